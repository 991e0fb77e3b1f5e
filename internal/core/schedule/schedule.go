// Package schedule moves a task's planned dates after its dependencies.
//
// Propagation is a single hop: only the task being edited (or the direct
// successors of a task whose end moved) is rescheduled. Longer chains
// settle as each dependent is saved in turn. Shifts move whole calendar
// days; the task keeps its own start and end times of day.
package schedule

import (
	"math"
	"time"

	"github.com/riordanpawley/planboard/internal/domain"
)

// DateRange is a planned start/end pair
type DateRange struct {
	Start domain.Date
	End   domain.Date
}

// LatestDependencyEnd returns the latest planned end among the task's
// resolvable dependencies. Unknown ids, the task itself, repeated ids and
// dependencies without a valid end are skipped.
func LatestDependencyEnd(task domain.Task, all []domain.Task) (domain.Date, bool) {
	if len(task.Dependencies) == 0 {
		return domain.Date{}, false
	}

	byID := make(map[string]int, len(all))
	for i, t := range all {
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = i
		}
	}

	var latest domain.Date
	found := false
	visited := make(map[string]bool, len(task.Dependencies))
	for _, dep := range task.Dependencies {
		if dep == task.ID || visited[dep] {
			continue
		}
		visited[dep] = true

		i, ok := byID[dep]
		if !ok {
			continue
		}
		end := all[i].PlannedEndDate
		if !end.Valid() {
			continue
		}
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// PropagateDates returns the task's planned dates after honouring its
// dependencies, and whether they changed. A task starting before the day
// after its latest dependency ends is shifted forward with its duration
// (in whole days) preserved; otherwise its dates are returned untouched.
func PropagateDates(task domain.Task, all []domain.Task) (DateRange, bool) {
	current := DateRange{Start: task.PlannedStartDate, End: task.PlannedEndDate}

	latest, ok := LatestDependencyEnd(task, all)
	if !ok || !task.PlannedStartDate.Valid() {
		return current, false
	}

	// compared by calendar day, since the shift keeps the task's own clock
	bound := latest.AddDays(1)
	if DaysBetween(bound.Time(), task.PlannedStartDate.Time()) >= 0 {
		return current, false
	}

	duration := 0
	if task.PlannedEndDate.Valid() {
		duration = DaysBetween(task.PlannedStartDate.Time(), task.PlannedEndDate.Time())
	}

	start := domain.NewDate(onDay(bound.Time(), task.PlannedStartDate.Time()))
	end := start
	if task.PlannedEndDate.Valid() {
		end = domain.NewDate(onDay(bound.Time().AddDate(0, 0, duration), task.PlannedEndDate.Time()))
	}
	return DateRange{Start: start, End: end}, true
}

// onDay puts clock's time of day, in clock's location, on day's calendar date
func onDay(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), clock.Location())
}

// Dependents returns the ids of tasks that list id as a direct dependency
func Dependents(id string, all []domain.Task) []string {
	var out []string
	for _, t := range all {
		if t.ID != id && t.DependsOn(id) {
			out = append(out, t.ID)
		}
	}
	return out
}

// DaysBetween is the signed number of calendar days from a to b, comparing
// calendar dates in each instant's own location
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(db.Sub(da).Hours() / 24))
}
