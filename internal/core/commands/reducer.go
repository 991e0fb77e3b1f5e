package commands

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riordanpawley/planboard/internal/core/baseline"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/core/schedule"
	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
)

// DefaultActor is recorded on change logs when no actor is configured
const DefaultActor = "planboard"

// Generated justifications for edits that do not go through the edit form
const (
	StatusChangeJustification = "Status changed on board"
	BulkMoveJustification     = "Moved in bulk"
	RescheduleJustification   = "Rescheduled after dependency %q moved"
)

// Result is the outcome of applying one command
type Result struct {
	Project domain.Project
	// Changes are the log entries this command appended, across all tasks
	Changes []domain.ChangeLog
	// Warnings are non-fatal findings, such as a dependency cycle
	Warnings []string
}

// Reducer applies commands to projects. It holds no project state and is
// safe for concurrent use when its clock and id generator are.
type Reducer struct {
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	actor  string
}

// Option configures a Reducer
type Option func(*Reducer)

// WithClock sets the time source for change logs and baselines
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) {
		r.now = now
	}
}

// WithIDGenerator sets the id source for new tasks and change logs
func WithIDGenerator(gen func() string) Option {
	return func(r *Reducer) {
		r.newID = gen
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reducer) {
		r.logger = logger
	}
}

// WithActor sets the name recorded on change logs
func WithActor(actor string) Option {
	return func(r *Reducer) {
		if actor != "" {
			r.actor = actor
		}
	}
}

// NewReducer creates a reducer using wall-clock time and random UUIDs
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
		actor:  DefaultActor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply runs cmd against p and returns the new snapshot. On error the
// returned Result is empty and p should be kept as is.
func (r *Reducer) Apply(p domain.Project, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, &domain.CommandError{Op: "apply", Err: domain.ErrInvalidCommand}
	}
	cmd = deref(cmd)
	r.logger.Debug("applying command", "type", cmd.Type(), "tasks", len(p.Tasks))

	var (
		res Result
		err error
	)
	switch c := cmd.(type) {
	case CreateTask:
		res, err = r.createTask(p, c)
	case EditTask:
		res, err = r.editTask(p, c)
	case DeleteTask:
		res, err = r.deleteTasks(p, TypeDeleteTask, []string{c.TaskID}, true)
	case ChangeStatus:
		res, err = r.changeStatus(p, c)
	case SaveBaseline:
		res = Result{Project: baseline.Save(p, r.now())}
	case DeleteBaseline:
		res = Result{Project: baseline.Delete(p)}
	case BulkDelete:
		res, err = r.deleteTasks(p, TypeBulkDelete, c.TaskIDs, false)
	case BulkDuplicate:
		res = r.bulkDuplicate(p, c)
	case BulkMove:
		res, err = r.bulkMove(p, c)
	case ImportTasks:
		res, err = r.importTasks(p, c)
	default:
		return Result{}, &domain.CommandError{Op: string(cmd.Type()), Err: domain.ErrInvalidCommand}
	}
	if err != nil {
		r.logger.Debug("command rejected", "type", cmd.Type(), "error", err)
		return Result{}, err
	}

	switch cmd.Type() {
	case TypeCreateTask, TypeEditTask, TypeBulkDuplicate, TypeImportTasks:
		r.checkCycles(&res)
	}

	r.logger.Info("command applied",
		"type", cmd.Type(),
		"changes", len(res.Changes),
		"tasks", len(res.Project.Tasks))
	return res, nil
}

func (r *Reducer) createTask(p domain.Project, c CreateTask) (Result, error) {
	out := p.Clone()
	t := c.Task.Clone()

	if t.ID == "" {
		t.ID = r.newID()
	}
	if _, exists := out.TaskByID(t.ID); exists {
		return Result{}, &domain.CommandError{
			Op:     string(TypeCreateTask),
			TaskID: t.ID,
			Err:    &domain.ValidationError{TaskID: t.ID, Field: "id", Reason: "already exists"},
		}
	}
	if t.Status == "" {
		if def, ok := out.Configuration.DefaultStatus(); ok {
			t.Status = def.ID
		}
	}
	t.Priority = t.Priority.Normalize()
	t.IsCritical = false
	t.ChangeHistory = nil

	if err := validate(out, nil, t); err != nil {
		return Result{}, &domain.CommandError{Op: string(TypeCreateTask), TaskID: t.ID, Err: err}
	}

	if dr, moved := schedule.PropagateDates(t, out.Tasks); moved {
		t.PlannedStartDate, t.PlannedEndDate = dr.Start, dr.End
	}

	out.Tasks = append(out.Tasks, t)
	return Result{Project: out}, nil
}

func (r *Reducer) editTask(p domain.Project, c EditTask) (Result, error) {
	op := string(TypeEditTask)
	idx := indexOf(p.Tasks, c.Task.ID)
	if idx < 0 {
		return Result{}, &domain.CommandError{Op: op, TaskID: c.Task.ID, Err: domain.ErrNotFound}
	}

	out := p.Clone()
	before := out.Tasks[idx]
	updated := c.Task.Clone()
	updated.Priority = updated.Priority.Normalize()
	// History and baselines are never edited through the form
	updated.ChangeHistory = before.ChangeHistory
	updated.BaselineStartDate = before.BaselineStartDate
	updated.BaselineEndDate = before.BaselineEndDate

	if err := validate(out, &before, updated); err != nil {
		return Result{}, &domain.CommandError{Op: op, TaskID: updated.ID, Err: err}
	}

	if !sameDependencies(before.Dependencies, updated.Dependencies) {
		out.Tasks[idx] = updated
		if dr, moved := schedule.PropagateDates(updated, out.Tasks); moved {
			r.logger.Debug("propagated dates after dependency change",
				"task", updated.ID, "start", dr.Start, "end", dr.End)
			updated.PlannedStartDate, updated.PlannedEndDate = dr.Start, dr.End
		}
	}

	diffs := diffTracked(before, updated)
	if len(diffs) == 0 {
		return Result{Project: p.Clone()}, nil
	}
	if strings.TrimSpace(c.Justification) == "" {
		return Result{}, &domain.CommandError{Op: op, TaskID: updated.ID, Err: domain.ErrJustificationRequired}
	}

	entries := r.logEntries(updated.ID, diffs, c.Justification)
	updated.ChangeHistory = append(slices.Clone(before.ChangeHistory), entries...)
	out.Tasks[idx] = updated

	changes := entries
	if !before.PlannedEndDate.Equal(updated.PlannedEndDate) {
		changes = append(changes, r.rescheduleDependents(&out, updated)...)
	}
	return Result{Project: out, Changes: changes}, nil
}

// rescheduleDependents pushes direct successors of moved after its new end.
// Their successors are left for their own edits.
func (r *Reducer) rescheduleDependents(out *domain.Project, moved domain.Task) []domain.ChangeLog {
	name := moved.Name
	if name == "" {
		name = moved.ID
	}
	justification := fmt.Sprintf(RescheduleJustification, name)

	var changes []domain.ChangeLog
	for _, id := range schedule.Dependents(moved.ID, out.Tasks) {
		i := indexOf(out.Tasks, id)
		t := out.Tasks[i]
		dr, ok := schedule.PropagateDates(t, out.Tasks)
		if !ok {
			continue
		}

		after := t
		after.PlannedStartDate, after.PlannedEndDate = dr.Start, dr.End
		entries := r.logEntries(t.ID, diffTracked(t, after), justification)
		after.ChangeHistory = append(slices.Clone(t.ChangeHistory), entries...)
		out.Tasks[i] = after
		changes = append(changes, entries...)

		r.logger.Info("rescheduled dependent", "task", t.ID, "after", moved.ID, "start", dr.Start)
	}
	return changes
}

// deleteTasks removes the given tasks with all their descendants and strips
// removed ids from remaining dependency lists. Unknown ids are an error only
// for a single delete.
func (r *Reducer) deleteTasks(p domain.Project, op Type, ids []string, strict bool) (Result, error) {
	forest := tree.Build(p.Tasks)
	removed := make(map[string]bool)
	for _, id := range ids {
		if _, ok := forest.Node(id); !ok {
			if strict {
				return Result{}, &domain.CommandError{Op: string(op), TaskID: id, Err: domain.ErrNotFound}
			}
			r.logger.Debug("skipping unknown task", "op", op, "task", id)
			continue
		}
		removed[id] = true
		for _, d := range forest.Descendants(id) {
			removed[d] = true
		}
	}

	out := p.Clone()
	kept := out.Tasks[:0]
	for _, t := range out.Tasks {
		if removed[t.ID] {
			continue
		}
		if len(t.Dependencies) > 0 {
			t.Dependencies = slices.DeleteFunc(t.Dependencies, func(dep string) bool {
				return removed[dep]
			})
		}
		kept = append(kept, t)
	}
	out.Tasks = kept

	r.logger.Debug("deleted tasks", "op", op, "removed", len(removed))
	return Result{Project: out}, nil
}

func (r *Reducer) changeStatus(p domain.Project, c ChangeStatus) (Result, error) {
	op := string(TypeChangeStatus)
	idx := indexOf(p.Tasks, c.TaskID)
	if idx < 0 {
		return Result{}, &domain.CommandError{Op: op, TaskID: c.TaskID, Err: domain.ErrNotFound}
	}
	if err := validateStatus(p.Configuration, c.TaskID, c.Status); err != nil {
		return Result{}, &domain.CommandError{Op: op, TaskID: c.TaskID, Err: err}
	}

	out := p.Clone()
	entries := r.setStatus(&out, idx, c.Status, StatusChangeJustification)
	return Result{Project: out, Changes: entries}, nil
}

func (r *Reducer) bulkMove(p domain.Project, c BulkMove) (Result, error) {
	if err := validateStatus(p.Configuration, "", c.Status); err != nil {
		return Result{}, &domain.CommandError{Op: string(TypeBulkMove), Err: err}
	}

	out := p.Clone()
	var changes []domain.ChangeLog
	for _, id := range dedupe(c.TaskIDs) {
		idx := indexOf(out.Tasks, id)
		if idx < 0 {
			r.logger.Debug("skipping unknown task", "op", TypeBulkMove, "task", id)
			continue
		}
		changes = append(changes, r.setStatus(&out, idx, c.Status, BulkMoveJustification)...)
	}
	return Result{Project: out, Changes: changes}, nil
}

func (r *Reducer) setStatus(out *domain.Project, idx int, status, justification string) []domain.ChangeLog {
	t := out.Tasks[idx]
	if t.Status == status {
		return nil
	}
	entries := r.logEntries(t.ID, []fieldDiff{{field: FieldStatus, oldValue: t.Status, newValue: status}}, justification)
	t.Status = status
	t.ChangeHistory = append(slices.Clone(t.ChangeHistory), entries...)
	out.Tasks[idx] = t
	return entries
}

// bulkDuplicate copies tasks under new ids, appended in request order.
// Links between copied tasks are rewired to the copies.
func (r *Reducer) bulkDuplicate(p domain.Project, c BulkDuplicate) Result {
	out := p.Clone()
	remap := make(map[string]string)
	var copies []domain.Task

	for _, id := range dedupe(c.TaskIDs) {
		src, ok := p.TaskByID(id)
		if !ok {
			r.logger.Debug("skipping unknown task", "op", TypeBulkDuplicate, "task", id)
			continue
		}
		cp := src.Clone()
		cp.ID = r.newID()
		cp.Name = src.Name + " (Copy)"
		cp.ChangeHistory = nil
		cp.IsCritical = false
		cp.BaselineStartDate = domain.Date{}
		cp.BaselineEndDate = domain.Date{}
		remap[src.ID] = cp.ID
		copies = append(copies, cp)
	}

	for i := range copies {
		rewire(&copies[i], remap)
	}
	out.Tasks = append(out.Tasks, copies...)
	return Result{Project: out}
}

// importTasks merges tasks parsed elsewhere. Missing, repeated or (when
// appending) colliding ids are regenerated and references among the imported
// tasks follow them. Unknown statuses fall back to the default status.
func (r *Reducer) importTasks(p domain.Project, c ImportTasks) (Result, error) {
	mode := c.Mode
	if mode == "" {
		mode = ImportAppend
	}
	if mode != ImportAppend && mode != ImportReplace {
		return Result{}, &domain.CommandError{
			Op:  string(TypeImportTasks),
			Err: fmt.Errorf("%w: unknown import mode %q", domain.ErrInvalidCommand, mode),
		}
	}

	out := p.Clone()
	existing := make(map[string]bool, len(out.Tasks))
	if mode == ImportAppend {
		for _, t := range out.Tasks {
			existing[t.ID] = true
		}
	}

	def, hasDefault := out.Configuration.DefaultStatus()
	remap := make(map[string]string)
	taken := make(map[string]bool, len(c.Tasks))
	imported := make([]domain.Task, 0, len(c.Tasks))
	for _, src := range c.Tasks {
		t := src.Clone()
		switch {
		case t.ID == "":
			t.ID = r.newID()
		case existing[t.ID]:
			// References inside the import mean the imported task
			id := r.newID()
			if _, seen := remap[t.ID]; !seen {
				remap[t.ID] = id
			}
			t.ID = id
		case taken[t.ID]:
			// A repeated id keeps pointing at its first occurrence
			t.ID = r.newID()
		}
		taken[t.ID] = true

		if hasDefault && (t.Status == "" || !out.Configuration.HasStatus(t.Status)) {
			t.Status = def.ID
		}
		t.Priority = t.Priority.Normalize()
		imported = append(imported, t)
	}
	for i := range imported {
		rewire(&imported[i], remap)
	}

	if mode == ImportReplace {
		out.Tasks = imported
	} else {
		out.Tasks = append(out.Tasks, imported...)
	}

	r.logger.Info("imported tasks", "mode", mode, "count", len(imported), "renamed", len(remap))
	return Result{Project: out}, nil
}

func (r *Reducer) checkCycles(res *Result) {
	ph := phases.Compute(res.Project.Tasks)
	if !ph.HasCycle() {
		return
	}
	r.logger.Warn("dependency cycle detected", "tasks", ph.Cycle)
	res.Warnings = append(res.Warnings, "dependency cycle: "+strings.Join(ph.Cycle, ", "))
}

func (r *Reducer) logEntries(taskID string, diffs []fieldDiff, justification string) []domain.ChangeLog {
	now := r.now()
	entries := make([]domain.ChangeLog, 0, len(diffs))
	for _, d := range diffs {
		entries = append(entries, domain.ChangeLog{
			ID:            r.newID(),
			TaskID:        taskID,
			Field:         d.field,
			OldValue:      d.oldValue,
			NewValue:      d.newValue,
			Actor:         r.actor,
			Timestamp:     now,
			Justification: justification,
		})
	}
	return entries
}

func rewire(t *domain.Task, remap map[string]string) {
	if t.ParentID != nil {
		if id, ok := remap[*t.ParentID]; ok {
			t.ParentID = &id
		}
	}
	for i, dep := range t.Dependencies {
		if id, ok := remap[dep]; ok {
			t.Dependencies[i] = id
		}
	}
}

func indexOf(tasks []domain.Task, id string) int {
	return slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
