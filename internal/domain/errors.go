package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNotFound              = errors.New("not found")
	ErrJustificationRequired = errors.New("justification required")
	ErrInvalidCommand        = errors.New("invalid command")
	ErrNotConfigured         = errors.New("not configured")
)

// ValidationError reports a task edit that violates a model invariant
type ValidationError struct {
	TaskID string // Task being validated
	Field  string // Offending field
	Reason string // Human-readable context
}

func (e *ValidationError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("invalid %s [%s]: %s", e.Field, e.TaskID, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CommandError wraps a failure applying a command to a project
type CommandError struct {
	Op     string // Command type: "edit_task", "delete_task", etc.
	TaskID string // Optional: specific task id
	Err    error  // Underlying error
}

func (e *CommandError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("command %s [%s]: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("command %s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// StoreError represents an error loading or saving a project file
type StoreError struct {
	Op      string // Operation: "load", "save", "watch"
	Path    string // File path
	Message string // Human-readable context
	Err     error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store %s [%s]: %s: %v", e.Op, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("store %s [%s]: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SummaryError represents a failure from the AI summary collaborator
type SummaryError struct {
	Kind    string // Summary kind: "summary", "risks", "lessons"
	Message string
	Err     error
}

func (e *SummaryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("summary %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("summary %s: %s", e.Kind, e.Message)
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}
