package commands

import (
	"fmt"
	"math"
	"slices"

	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
)

// validate checks a created or edited task against the project it will
// live in. p still holds the task's previous version when editing, and
// before is that version (nil on create). Only references the edit adds are
// checked, so a task carrying a dangling reference from an import can still
// be edited.
func validate(p domain.Project, before *domain.Task, t domain.Task) error {
	if err := validateStatus(p.Configuration, t.ID, t.Status); err != nil {
		return err
	}

	if t.PlannedStartDate.Valid() && t.PlannedEndDate.Valid() && t.PlannedEndDate.Before(t.PlannedStartDate) {
		return &domain.ValidationError{TaskID: t.ID, Field: FieldPlannedEndDate, Reason: "ends before it starts"}
	}
	if t.ActualStartDate.Valid() && t.ActualEndDate.Valid() && t.ActualEndDate.Before(t.ActualStartDate) {
		return &domain.ValidationError{TaskID: t.ID, Field: FieldActualEndDate, Reason: "ends before it starts"}
	}

	if err := validateHours(t.ID, FieldPlannedHours, t.PlannedHours); err != nil {
		return err
	}
	if err := validateHours(t.ID, FieldActualHours, t.ActualHours); err != nil {
		return err
	}

	for _, dep := range t.Dependencies {
		if before != nil && before.DependsOn(dep) {
			continue
		}
		if dep == t.ID {
			return &domain.ValidationError{TaskID: t.ID, Field: FieldDependencies, Reason: "a task cannot depend on itself"}
		}
		if _, ok := p.TaskByID(dep); !ok {
			return &domain.ValidationError{TaskID: t.ID, Field: FieldDependencies, Reason: fmt.Sprintf("unknown task %q", dep)}
		}
	}

	if pid := t.Parent(); pid != "" && (before == nil || before.Parent() != pid) {
		if pid == t.ID {
			return &domain.ValidationError{TaskID: t.ID, Field: FieldParentID, Reason: "a task cannot be its own parent"}
		}
		if _, ok := p.TaskByID(pid); !ok {
			return &domain.ValidationError{TaskID: t.ID, Field: FieldParentID, Reason: fmt.Sprintf("unknown task %q", pid)}
		}
		if slices.Contains(tree.Build(p.Tasks).Descendants(t.ID), pid) {
			return &domain.ValidationError{TaskID: t.ID, Field: FieldParentID, Reason: "parent is one of the task's own sub-tasks"}
		}
	}

	return nil
}

func validateHours(taskID, field string, h float64) error {
	if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return &domain.ValidationError{TaskID: taskID, Field: field, Reason: fmt.Sprintf("must be a non-negative number, got %v", h)}
	}
	return nil
}

// validateStatus accepts any configured status. A project without any
// configured statuses accepts everything.
func validateStatus(cfg domain.Configuration, taskID, status string) error {
	if len(cfg.Statuses) == 0 || cfg.HasStatus(status) {
		return nil
	}
	return &domain.ValidationError{TaskID: taskID, Field: FieldStatus, Reason: fmt.Sprintf("unknown status %q", status)}
}
