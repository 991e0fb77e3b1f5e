// Package domain contains the core business types for planboard.
package domain

import "time"

// DefaultHourlyRate is used to derive actual cost when the project does not set one
const DefaultHourlyRate = 50.0

// Project is the full flat task set plus its configuration.
// Nested views are always derived from Tasks, never stored.
type Project struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Tasks           []Task        `json:"tasks" yaml:"tasks"`
	Configuration   Configuration `json:"configuration" yaml:"configuration"`
	PlannedBudget   float64       `json:"plannedBudget" yaml:"plannedBudget"`
	BaselineSavedAt *time.Time    `json:"baselineSavedAt,omitempty" yaml:"baselineSavedAt,omitempty"`
}

// Configuration holds per-project customizable behaviour
type Configuration struct {
	Statuses   []StatusDefinition `json:"statuses" yaml:"statuses"`
	HourlyRate float64            `json:"hourlyRate,omitempty" yaml:"hourlyRate,omitempty"`
}

// StatusDefinition describes one workflow column
type StatusDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
	IsDefault   bool   `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	IsCompleted bool   `json:"isCompleted,omitempty" yaml:"isCompleted,omitempty"`
}

// DefaultStatuses is the configuration used for new projects
func DefaultStatuses() []StatusDefinition {
	return []StatusDefinition{
		{ID: "todo", Name: "To Do", Color: "#8aadf4", IsDefault: true},
		{ID: "in_progress", Name: "In Progress", Color: "#eed49f"},
		{ID: "blocked", Name: "Blocked", Color: "#ed8796"},
		{ID: "done", Name: "Done", Color: "#a6da95", IsCompleted: true},
	}
}

// DefaultStatus returns the status flagged default, falling back to the first
func (c Configuration) DefaultStatus() (StatusDefinition, bool) {
	for _, s := range c.Statuses {
		if s.IsDefault {
			return s, true
		}
	}
	if len(c.Statuses) > 0 {
		return c.Statuses[0], true
	}
	return StatusDefinition{}, false
}

// CompletedStatus returns the first status flagged completed
func (c Configuration) CompletedStatus() (StatusDefinition, bool) {
	for _, s := range c.Statuses {
		if s.IsCompleted {
			return s, true
		}
	}
	return StatusDefinition{}, false
}

// IsCompleted reports whether status is the configured completed status
func (c Configuration) IsCompleted(status string) bool {
	done, ok := c.CompletedStatus()
	return ok && done.ID == status
}

// Status looks up a status definition by id
func (c Configuration) Status(id string) (StatusDefinition, bool) {
	for _, s := range c.Statuses {
		if s.ID == id {
			return s, true
		}
	}
	return StatusDefinition{}, false
}

// HasStatus reports whether id is a configured status
func (c Configuration) HasStatus(id string) bool {
	_, ok := c.Status(id)
	return ok
}

// Rate returns the hourly rate used for cost derivation
func (c Configuration) Rate() float64 {
	if c.HourlyRate > 0 {
		return c.HourlyRate
	}
	return DefaultHourlyRate
}

// ActualCost is the sum of actual hours times the hourly rate
func (p Project) ActualCost() float64 {
	rate := p.Configuration.Rate()
	var total float64
	for _, t := range p.Tasks {
		total += t.ActualHours * rate
	}
	return total
}

// TaskByID returns the task with the given id
func (p Project) TaskByID(id string) (Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Clone returns a deep copy of the project
func (p Project) Clone() Project {
	c := p
	if p.Tasks != nil {
		c.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			c.Tasks[i] = t.Clone()
		}
	}
	if p.Configuration.Statuses != nil {
		c.Configuration.Statuses = append([]StatusDefinition(nil), p.Configuration.Statuses...)
	}
	if p.BaselineSavedAt != nil {
		ts := *p.BaselineSavedAt
		c.BaselineSavedAt = &ts
	}
	return c
}

// NewProject creates an empty project with the default status set
func NewProject(id, name string) Project {
	return Project{
		ID:   id,
		Name: name,
		Configuration: Configuration{
			Statuses: DefaultStatuses(),
		},
	}
}
