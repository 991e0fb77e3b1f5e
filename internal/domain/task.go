package domain

import (
	"slices"
	"time"
)

// Task is a single schedulable unit of work in a project
type Task struct {
	ID                string         `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	Assignee          string         `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Status            string         `json:"status" yaml:"status"`
	Priority          Priority       `json:"priority" yaml:"priority"`
	PlannedStartDate  Date           `json:"plannedStartDate" yaml:"plannedStartDate"`
	PlannedEndDate    Date           `json:"plannedEndDate" yaml:"plannedEndDate"`
	ActualStartDate   Date           `json:"actualStartDate,omitzero" yaml:"actualStartDate,omitempty"`
	ActualEndDate     Date           `json:"actualEndDate,omitzero" yaml:"actualEndDate,omitempty"`
	PlannedHours      float64        `json:"plannedHours" yaml:"plannedHours"`
	ActualHours       float64        `json:"actualHours" yaml:"actualHours"`
	Dependencies      []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ParentID          *string        `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	BaselineStartDate Date           `json:"baselineStartDate,omitzero" yaml:"baselineStartDate,omitempty"`
	BaselineEndDate   Date           `json:"baselineEndDate,omitzero" yaml:"baselineEndDate,omitempty"`
	IsMilestone       bool           `json:"isMilestone" yaml:"isMilestone"`
	IsCritical        bool           `json:"isCritical" yaml:"isCritical"`
	CustomFields      map[string]any `json:"customFields,omitempty" yaml:"customFields,omitempty"`
	ChangeHistory     []ChangeLog    `json:"changeHistory,omitempty" yaml:"changeHistory,omitempty"`
}

// Priority is the task priority. The zero value means Medium.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Normalize returns the priority, defaulting unknown values to Medium
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// Rank orders priorities High > Medium > Low
func (p Priority) Rank() int {
	switch p.Normalize() {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// String returns the display string
func (p Priority) String() string {
	return string(p.Normalize())
}

// ChangeLog is one field-level edit recorded on a task
type ChangeLog struct {
	ID            string    `json:"id" yaml:"id"`
	TaskID        string    `json:"taskId" yaml:"taskId"`
	Field         string    `json:"field" yaml:"field"`
	OldValue      string    `json:"oldValue" yaml:"oldValue"`
	NewValue      string    `json:"newValue" yaml:"newValue"`
	Actor         string    `json:"actor" yaml:"actor"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Justification string    `json:"justification" yaml:"justification"`
}

// Parent returns the parent id, or "" for a root task
func (t Task) Parent() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

// HasBaseline reports whether both baseline dates are present
func (t Task) HasBaseline() bool {
	return !t.BaselineStartDate.IsZero() && !t.BaselineEndDate.IsZero()
}

// DependsOn reports whether id is listed in the task's dependencies
func (t Task) DependsOn(id string) bool {
	return slices.Contains(t.Dependencies, id)
}

// Clone returns a deep copy so snapshots never share mutable state
func (t Task) Clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = slices.Clone(t.Dependencies)
	}
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	if t.CustomFields != nil {
		c.CustomFields = make(map[string]any, len(t.CustomFields))
		for k, v := range t.CustomFields {
			c.CustomFields[k] = v
		}
	}
	if t.ChangeHistory != nil {
		c.ChangeHistory = slices.Clone(t.ChangeHistory)
	}
	return c
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
