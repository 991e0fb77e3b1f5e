package domain

import "strings"

// Filter represents task filtering state
type Filter struct {
	Status         map[string]bool
	Priority       map[Priority]bool
	Assignee       map[string]bool
	CriticalOnly   bool
	MilestonesOnly bool
	HideSubtasks   bool
	SearchQuery    string
}

// NewFilter creates a new empty filter
func NewFilter() *Filter {
	return &Filter{
		Status:   make(map[string]bool),
		Priority: make(map[Priority]bool),
		Assignee: make(map[string]bool),
	}
}

// IsActive returns true if any filter is active
func (f *Filter) IsActive() bool {
	return len(f.Status) > 0 ||
		len(f.Priority) > 0 ||
		len(f.Assignee) > 0 ||
		f.CriticalOnly ||
		f.MilestonesOnly ||
		f.HideSubtasks ||
		f.SearchQuery != ""
}

// Apply filters a list of tasks
func (f *Filter) Apply(tasks []Task) []Task {
	if !f.IsActive() {
		return tasks
	}

	result := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Matches(task) {
			result = append(result, task)
		}
	}
	return result
}

// Matches returns true if the task passes all active filters
// Uses AND logic between filter types, OR logic within filter types
func (f *Filter) Matches(t Task) bool {
	if len(f.Status) > 0 && !f.Status[t.Status] {
		return false
	}

	if len(f.Priority) > 0 && !f.Priority[t.Priority.Normalize()] {
		return false
	}

	if len(f.Assignee) > 0 && !f.Assignee[t.Assignee] {
		return false
	}

	if f.CriticalOnly && !t.IsCritical {
		return false
	}

	if f.MilestonesOnly && !t.IsMilestone {
		return false
	}

	if f.HideSubtasks && t.ParentID != nil {
		return false
	}

	// Search query (case-insensitive, matches name or ID)
	if f.SearchQuery != "" {
		query := strings.ToLower(f.SearchQuery)
		name := strings.ToLower(t.Name)
		id := strings.ToLower(t.ID)

		if !strings.Contains(name, query) && !strings.Contains(id, query) {
			return false
		}
	}

	return true
}

// Clear resets all filters
func (f *Filter) Clear() {
	f.Status = make(map[string]bool)
	f.Priority = make(map[Priority]bool)
	f.Assignee = make(map[string]bool)
	f.CriticalOnly = false
	f.MilestonesOnly = false
	f.HideSubtasks = false
	f.SearchQuery = ""
}

// ToggleStatus toggles a status filter
func (f *Filter) ToggleStatus(s string) {
	if f.Status[s] {
		delete(f.Status, s)
	} else {
		f.Status[s] = true
	}
}

// TogglePriority toggles a priority filter
func (f *Filter) TogglePriority(p Priority) {
	p = p.Normalize()
	if f.Priority[p] {
		delete(f.Priority, p)
	} else {
		f.Priority[p] = true
	}
}

// ToggleAssignee toggles an assignee filter
func (f *Filter) ToggleAssignee(a string) {
	if f.Assignee[a] {
		delete(f.Assignee, a)
	} else {
		f.Assignee[a] = true
	}
}
