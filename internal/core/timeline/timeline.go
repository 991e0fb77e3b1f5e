// Package timeline buckets a task set into Gantt columns at a zoom level.
//
// All positions are in zoom-relative units: days at day zoom, weeks at week
// zoom and months at month zoom. Rendering to cells or pixels is left to the
// caller, which can use Percent to scale against the column count.
package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riordanpawley/planboard/internal/core/schedule"
	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
)

// Zoom is the timeline granularity
type Zoom string

const (
	ZoomDay   Zoom = "day"
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// daysPerMonth approximates month length for bar widths at month zoom
const daysPerMonth = 30.44

// fallbackDays is the span shown when no task carries a usable date
const fallbackDays = 30

// maxColumns caps the chart width per zoom: ten years of days, twenty of
// weeks, a century of months. Wider spans are cut at the end and flagged.
var maxColumns = map[Zoom]int{
	ZoomDay:   3660,
	ZoomWeek:  1044,
	ZoomMonth: 1200,
}

// ErrUnknownZoom is returned by ParseZoom for anything but day/week/month
var ErrUnknownZoom = errors.New("unknown zoom level")

// ParseZoom parses a zoom name, case-insensitively
func ParseZoom(s string) (Zoom, error) {
	switch z := Zoom(strings.ToLower(strings.TrimSpace(s))); z {
	case ZoomDay, ZoomWeek, ZoomMonth:
		return z, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownZoom, s)
}

// String implements fmt.Stringer
func (z Zoom) String() string {
	return string(z)
}

// HeaderCell is one cell of the coarse header row
type HeaderCell struct {
	Label string `json:"label"`
	Span  int    `json:"span"`
}

// Column is one cell of the fine header row
type Column struct {
	Label    string      `json:"label"`
	SubLabel string      `json:"subLabel"`
	Date     domain.Date `json:"date"`
}

// Bar is a horizontal segment in zoom units
type Bar struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End is the bar's right edge
func (b Bar) End() float64 {
	return b.Start + b.Duration
}

// Row is one task line of the chart
type Row struct {
	TaskID    string `json:"taskId"`
	Name      string `json:"name"`
	Depth     int    `json:"depth"`
	Milestone bool   `json:"milestone,omitempty"`
	Critical  bool   `json:"critical,omitempty"`
	Planned   *Bar   `json:"planned,omitempty"`
	Baseline  *Bar   `json:"baseline,omitempty"`
}

// Timeline is the bucketed chart for a task set
type Timeline struct {
	Zoom  Zoom `json:"zoom"`
	Empty bool `json:"empty"`

	// Start and End are the overall bounds, calendar days inclusive
	Start domain.Date `json:"start"`
	End   domain.Date `json:"end"`

	// Clamped is set when the span exceeded the zoom's column cap and End
	// was pulled in
	Clamped bool `json:"clamped,omitempty"`

	Columns int          `json:"columns"`
	Coarse  []HeaderCell `json:"coarse"`
	Fine    []Column     `json:"fine"`
	Rows    []Row        `json:"rows"`

	// Today is the marker position, absent when today is out of range
	Today *float64 `json:"today,omitempty"`

	anchor time.Time
}

// Percent scales a zoom-unit position to a percentage of the chart width.
// It is 0 for an empty chart.
func (tl Timeline) Percent(v float64) float64 {
	if tl.Columns <= 0 {
		return 0
	}
	return v / float64(tl.Columns) * 100
}

// Build buckets tasks at the given zoom. An unknown zoom is treated as day.
// Rows follow the task tree depth-first; tasks with unusable planned or
// baseline dates keep their row but lose the affected bar.
func Build(tasks []domain.Task, zoom Zoom, today time.Time) Timeline {
	if _, err := ParseZoom(string(zoom)); err != nil {
		zoom = ZoomDay
	}

	tl := Timeline{Zoom: zoom, Coarse: []HeaderCell{}, Fine: []Column{}, Rows: []Row{}}
	if len(tasks) == 0 {
		tl.Empty = true
		return tl
	}

	start, end, ok := bounds(tasks)
	if !ok {
		start = midnight(today)
		end = start.AddDate(0, 0, fallbackDays)
	}
	tl.anchor = anchorFor(zoom, start)
	if limit := lastColumnEnd(zoom, tl.anchor); end.After(limit) {
		end = limit
		tl.Clamped = true
	}
	tl.Start = domain.NewDate(start)
	tl.End = domain.NewDate(end)

	tl.Fine = columns(zoom, tl.anchor, end)
	tl.Columns = len(tl.Fine)
	tl.Coarse = coarse(zoom, tl.Fine)

	for _, n := range tree.Build(tasks).Flatten() {
		t := n.Task
		tl.Rows = append(tl.Rows, Row{
			TaskID:    t.ID,
			Name:      t.Name,
			Depth:     n.Depth,
			Milestone: t.IsMilestone,
			Critical:  t.IsCritical,
			Planned:   tl.bar(t.PlannedStartDate, t.PlannedEndDate),
			Baseline:  tl.bar(t.BaselineStartDate, t.BaselineEndDate),
		})
	}

	day := midnight(today)
	if !day.Before(start) && !day.After(end) {
		pos := tl.offset(day)
		tl.Today = &pos
	}

	return tl
}

// Position returns the zoom-unit offset of a date from the chart anchor
func (tl Timeline) Position(d domain.Date) (float64, bool) {
	if tl.Empty || !d.Valid() {
		return 0, false
	}
	return tl.offset(midnight(d.Time())), true
}

func (tl Timeline) bar(start, end domain.Date) *Bar {
	if !start.Valid() || !end.Valid() {
		return nil
	}
	s := midnight(start.Time())
	e := midnight(end.Time())
	if e.Before(s) {
		e = s
	}
	days := float64(schedule.DaysBetween(s, e) + 1)

	b := &Bar{Start: tl.offset(s)}
	switch tl.Zoom {
	case ZoomWeek:
		b.Duration = days / 7
	case ZoomMonth:
		b.Duration = days / daysPerMonth
	default:
		b.Duration = days
	}
	return b
}

func (tl Timeline) offset(day time.Time) float64 {
	switch tl.Zoom {
	case ZoomWeek:
		return float64(schedule.DaysBetween(tl.anchor, day)) / 7
	case ZoomMonth:
		return float64(monthsBetween(tl.anchor, day))
	default:
		return float64(schedule.DaysBetween(tl.anchor, day))
	}
}

// bounds is the min/max calendar day over valid planned and baseline dates
func bounds(tasks []domain.Task) (time.Time, time.Time, bool) {
	var lo, hi time.Time
	found := false
	for _, t := range tasks {
		for _, d := range []domain.Date{t.PlannedStartDate, t.PlannedEndDate, t.BaselineStartDate, t.BaselineEndDate} {
			if !d.Valid() {
				continue
			}
			day := midnight(d.Time())
			if !found || day.Before(lo) {
				lo = day
			}
			if !found || day.After(hi) {
				hi = day
			}
			found = true
		}
	}
	return lo, hi, found
}

func anchorFor(zoom Zoom, start time.Time) time.Time {
	switch zoom {
	case ZoomWeek:
		// Monday on or before start
		back := (int(start.Weekday()) + 6) % 7
		return start.AddDate(0, 0, -back)
	case ZoomMonth:
		return time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return start
	}
}

// lastColumnEnd is the last day covered when the chart is maxColumns wide
func lastColumnEnd(zoom Zoom, anchor time.Time) time.Time {
	n := maxColumns[zoom]
	switch zoom {
	case ZoomWeek:
		return anchor.AddDate(0, 0, 7*n-1)
	case ZoomMonth:
		return anchor.AddDate(0, n, -1)
	default:
		return anchor.AddDate(0, 0, n-1)
	}
}

func columns(zoom Zoom, anchor, end time.Time) []Column {
	var out []Column
	switch zoom {
	case ZoomWeek:
		for d := anchor; !d.After(end); d = d.AddDate(0, 0, 7) {
			_, week := d.ISOWeek()
			out = append(out, Column{
				Label:    fmt.Sprintf("W%02d", week),
				SubLabel: d.Format("Jan 2"),
				Date:     domain.NewDate(d),
			})
		}
	case ZoomMonth:
		for d := anchor; !d.After(end); d = d.AddDate(0, 1, 0) {
			out = append(out, Column{
				Label:    d.Format("Jan"),
				SubLabel: d.Format("2006"),
				Date:     domain.NewDate(d),
			})
		}
	default:
		for d := anchor; !d.After(end); d = d.AddDate(0, 0, 1) {
			out = append(out, Column{
				Label:    fmt.Sprintf("%d", d.Day()),
				SubLabel: d.Format("Mon"),
				Date:     domain.NewDate(d),
			})
		}
	}
	return out
}

// coarse groups consecutive fine columns by month, or by year at month zoom
func coarse(zoom Zoom, fine []Column) []HeaderCell {
	key := func(t time.Time) string {
		if zoom == ZoomMonth {
			return t.Format("2006")
		}
		return t.Format("Jan 2006")
	}

	var out []HeaderCell
	for _, c := range fine {
		label := key(c.Date.Time())
		if n := len(out); n > 0 && out[n-1].Label == label {
			out[n-1].Span++
			continue
		}
		out = append(out, HeaderCell{Label: label, Span: 1})
	}
	return out
}

// midnight is the calendar day of t, as seen in t's own location, in UTC
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
