// Package commands applies edits to a project as pure transitions.
//
// Each Command produces a new Project snapshot plus the ChangeLog entries it
// generated; the input project is never modified. Callers serialize
// concurrent edits themselves (last writer wins).
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/riordanpawley/planboard/internal/domain"
)

// Type names a command on the wire
type Type string

const (
	TypeCreateTask     Type = "create_task"
	TypeEditTask       Type = "edit_task"
	TypeDeleteTask     Type = "delete_task"
	TypeChangeStatus   Type = "change_status"
	TypeSaveBaseline   Type = "save_baseline"
	TypeDeleteBaseline Type = "delete_baseline"
	TypeBulkDelete     Type = "bulk_delete"
	TypeBulkDuplicate  Type = "bulk_duplicate"
	TypeBulkMove       Type = "bulk_move"
	TypeImportTasks    Type = "import_tasks"
)

// Command is one of the closed set of project transitions below
type Command interface {
	Type() Type
	command()
}

// CreateTask adds a new task. An empty ID is generated.
type CreateTask struct {
	Task domain.Task `json:"task"`
}

// EditTask replaces a task's tracked fields with those of Task.
// Justification is required whenever a tracked field changes.
type EditTask struct {
	Task          domain.Task `json:"task"`
	Justification string      `json:"justification"`
}

// DeleteTask removes a task and all its descendants
type DeleteTask struct {
	TaskID string `json:"taskId"`
}

// ChangeStatus moves a task to another status column, as a board drag does
type ChangeStatus struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// SaveBaseline snapshots every task's planned dates
type SaveBaseline struct{}

// DeleteBaseline clears every task's baseline
type DeleteBaseline struct{}

// BulkDelete removes several tasks and their descendants
type BulkDelete struct {
	TaskIDs []string `json:"taskIds"`
}

// BulkDuplicate copies tasks under fresh ids
type BulkDuplicate struct {
	TaskIDs []string `json:"taskIds"`
}

// BulkMove moves several tasks to one status column
type BulkMove struct {
	TaskIDs []string `json:"taskIds"`
	Status  string   `json:"status"`
}

// ImportMode controls how imported tasks meet existing ones
type ImportMode string

const (
	ImportAppend  ImportMode = "append"
	ImportReplace ImportMode = "replace"
)

// ImportTasks adds parsed tasks to the project, or replaces them all
type ImportTasks struct {
	Tasks []domain.Task `json:"tasks"`
	Mode  ImportMode    `json:"mode"`
}

func (CreateTask) Type() Type     { return TypeCreateTask }
func (EditTask) Type() Type       { return TypeEditTask }
func (DeleteTask) Type() Type     { return TypeDeleteTask }
func (ChangeStatus) Type() Type   { return TypeChangeStatus }
func (SaveBaseline) Type() Type   { return TypeSaveBaseline }
func (DeleteBaseline) Type() Type { return TypeDeleteBaseline }
func (BulkDelete) Type() Type     { return TypeBulkDelete }
func (BulkDuplicate) Type() Type  { return TypeBulkDuplicate }
func (BulkMove) Type() Type       { return TypeBulkMove }
func (ImportTasks) Type() Type    { return TypeImportTasks }

func (CreateTask) command()     {}
func (EditTask) command()       {}
func (DeleteTask) command()     {}
func (ChangeStatus) command()   {}
func (SaveBaseline) command()   {}
func (DeleteBaseline) command() {}
func (BulkDelete) command()     {}
func (BulkDuplicate) command()  {}
func (BulkMove) command()       {}
func (ImportTasks) command()    {}

// Envelope is the wire form of a command
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode parses an envelope into its command
func Decode(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCommand, err)
	}
	return env.Command()
}

// Command decodes the payload according to the envelope type
func (e Envelope) Command() (Command, error) {
	var cmd Command
	switch e.Type {
	case TypeCreateTask:
		cmd = &CreateTask{}
	case TypeEditTask:
		cmd = &EditTask{}
	case TypeDeleteTask:
		cmd = &DeleteTask{}
	case TypeChangeStatus:
		cmd = &ChangeStatus{}
	case TypeSaveBaseline:
		return SaveBaseline{}, nil
	case TypeDeleteBaseline:
		return DeleteBaseline{}, nil
	case TypeBulkDelete:
		cmd = &BulkDelete{}
	case TypeBulkDuplicate:
		cmd = &BulkDuplicate{}
	case TypeBulkMove:
		cmd = &BulkMove{}
	case TypeImportTasks:
		cmd = &ImportTasks{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidCommand, e.Type)
	}

	if len(e.Payload) == 0 {
		return nil, fmt.Errorf("%w: %s requires a payload", domain.ErrInvalidCommand, e.Type)
	}
	if err := json.Unmarshal(e.Payload, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", domain.ErrInvalidCommand, e.Type, err)
	}
	return deref(cmd), nil
}

// Encode wraps a command in its envelope
func Encode(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: cmd.Type(), Payload: payload})
}

func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *CreateTask:
		return *c
	case *EditTask:
		return *c
	case *DeleteTask:
		return *c
	case *ChangeStatus:
		return *c
	case *BulkDelete:
		return *c
	case *BulkDuplicate:
		return *c
	case *BulkMove:
		return *c
	case *ImportTasks:
		return *c
	}
	return cmd
}
