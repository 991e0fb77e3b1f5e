package domain

import (
	"sort"
	"strings"
)

// SortField represents a field to sort by
type SortField string

const (
	SortByStart    SortField = "start"
	SortByEnd      SortField = "end"
	SortByPriority SortField = "priority"
	SortByName     SortField = "name"
)

// SortOrder represents sort direction
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// Sort represents sorting state
type Sort struct {
	Field SortField
	Order SortOrder
}

// Toggle toggles the sort field or direction
// If field is different, sets new field with ascending order
// If field is same, toggles between ascending and descending
func (s *Sort) Toggle(field SortField) {
	if s.Field == field {
		if s.Order == SortAsc {
			s.Order = SortDesc
		} else {
			s.Order = SortAsc
		}
	} else {
		s.Field = field
		s.Order = SortAsc
	}
}

// Apply sorts a copy of the task list. Tasks with an invalid sort date
// always go last regardless of direction.
func (s *Sort) Apply(tasks []Task) []Task {
	if len(tasks) == 0 {
		return tasks
	}

	// Make a copy to avoid modifying the input slice
	result := make([]Task, len(tasks))
	copy(result, tasks)

	switch s.Field {
	case SortByPriority:
		sort.SliceStable(result, func(i, j int) bool {
			if s.Order == SortAsc {
				return result[i].Priority.Rank() > result[j].Priority.Rank()
			}
			return result[i].Priority.Rank() < result[j].Priority.Rank()
		})

	case SortByName:
		sort.SliceStable(result, func(i, j int) bool {
			a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
			if s.Order == SortAsc {
				return a < b
			}
			return a > b
		})

	case SortByStart:
		sort.SliceStable(result, func(i, j int) bool {
			return s.lessDate(result[i].PlannedStartDate, result[j].PlannedStartDate)
		})

	case SortByEnd:
		sort.SliceStable(result, func(i, j int) bool {
			return s.lessDate(result[i].PlannedEndDate, result[j].PlannedEndDate)
		})
	}

	return result
}

func (s *Sort) lessDate(a, b Date) bool {
	if !a.Valid() || !b.Valid() {
		return a.Valid() && !b.Valid()
	}
	if s.Order == SortAsc {
		return a.Before(b)
	}
	return a.After(b)
}
