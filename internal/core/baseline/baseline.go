// Package baseline snapshots and clears planned dates across a project.
package baseline

import (
	"time"

	"github.com/riordanpawley/planboard/internal/core/schedule"
	"github.com/riordanpawley/planboard/internal/domain"
)

// Save copies every task's planned dates into its baseline and stamps the
// project. Tasks missing a planned start or end get no baseline. Saving
// again overwrites the previous snapshot. The input project is not modified.
func Save(p domain.Project, now time.Time) domain.Project {
	out := p.Clone()
	for i := range out.Tasks {
		t := &out.Tasks[i]
		// baseline dates are stored as a pair or not at all
		if t.PlannedStartDate.IsZero() || t.PlannedEndDate.IsZero() {
			t.BaselineStartDate, t.BaselineEndDate = domain.Date{}, domain.Date{}
			continue
		}
		t.BaselineStartDate = t.PlannedStartDate
		t.BaselineEndDate = t.PlannedEndDate
	}
	ts := now
	out.BaselineSavedAt = &ts
	return out
}

// Delete strips baseline dates from every task and clears the project stamp.
// Deleting when no baseline exists is a no-op.
func Delete(p domain.Project) domain.Project {
	out := p.Clone()
	for i := range out.Tasks {
		out.Tasks[i].BaselineStartDate = domain.Date{}
		out.Tasks[i].BaselineEndDate = domain.Date{}
	}
	out.BaselineSavedAt = nil
	return out
}

// Exists reports whether the project carries a saved baseline
func Exists(p domain.Project) bool {
	if p.BaselineSavedAt != nil {
		return true
	}
	for _, t := range p.Tasks {
		if t.HasBaseline() {
			return true
		}
	}
	return false
}

// Variance is how many days a task's planned dates have slipped against
// its baseline. Positive means later than baselined.
type Variance struct {
	TaskID    string `json:"taskId"`
	StartDays int    `json:"startDays"`
	EndDays   int    `json:"endDays"`
}

// Variances lists slippage for tasks whose planned and baseline dates are
// all valid, in input order
func Variances(tasks []domain.Task) []Variance {
	out := []Variance{}
	for _, t := range tasks {
		if !t.PlannedStartDate.Valid() || !t.PlannedEndDate.Valid() ||
			!t.BaselineStartDate.Valid() || !t.BaselineEndDate.Valid() {
			continue
		}
		out = append(out, Variance{
			TaskID:    t.ID,
			StartDays: schedule.DaysBetween(t.BaselineStartDate.Time(), t.PlannedStartDate.Time()),
			EndDays:   schedule.DaysBetween(t.BaselineEndDate.Time(), t.PlannedEndDate.Time()),
		})
	}
	return out
}
