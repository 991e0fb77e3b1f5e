package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/services/store"
	"github.com/riordanpawley/planboard/internal/types"
	"github.com/riordanpawley/planboard/internal/ui/board"
	"github.com/riordanpawley/planboard/internal/ui/overlay"
)

var fixedNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

// memoryRepo is an in-memory Repository
type memoryRepo struct {
	mu      sync.Mutex
	project domain.Project
	saves   int
	loadErr error
	saveErr error
}

func (r *memoryRepo) Load() (domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return domain.Project{}, r.loadErr
	}
	return r.project.Clone(), nil
}

func (r *memoryRepo) Save(p domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.project = p.Clone()
	r.saves++
	return nil
}

func testProject() domain.Project {
	p := domain.NewProject("p-1", "Launch")
	p.Tasks = []domain.Task{
		{ID: "a", Name: "Design", Status: "done", PlannedHours: 8, ActualHours: 8, PlannedStartDate: domain.Day(2024, 3, 4), PlannedEndDate: domain.Day(2024, 3, 5)},
		{ID: "b", Name: "Build", Status: "todo", PlannedHours: 16, Dependencies: []string{"a"}, PlannedStartDate: domain.Day(2024, 3, 6), PlannedEndDate: domain.Day(2024, 3, 8)},
		{ID: "c", Name: "Test", Status: "todo", PlannedHours: 8, ParentID: domain.StringPtr("b"), PlannedStartDate: domain.Day(2024, 3, 7), PlannedEndDate: domain.Day(2024, 3, 8)},
	}
	return p
}

func newTestModel(t *testing.T, repo *memoryRepo) Model {
	t.Helper()
	n := 0
	reducer := commands.NewReducer(
		commands.WithClock(func() time.Time { return fixedNow }),
		commands.WithIDGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) }),
		commands.WithActor("tui-test"),
		commands.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	m := New(Options{
		Repo:    repo,
		Reducer: reducer,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     func() time.Time { return fixedNow },
		Zoom:    timeline.ZoomWeek,
	})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return send(t, m, m.loadCmd()())
}

func loadedModel(t *testing.T) (Model, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{project: testProject()}
	return newTestModel(t, repo), repo
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends keys one by one and runs any save the last one returned
func press(t *testing.T, m Model, keys ...string) (Model, tea.Msg) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	// overlay answers come back through Update like they would at runtime
	for {
		switch msg.(type) {
		case overlay.SelectionMsg, overlay.CloseOverlayMsg:
		default:
			return m, msg
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			return m, nil
		}
		msg = cmd()
	}
}

func taskStatus(t *testing.T, p domain.Project, id string) string {
	t.Helper()
	task, ok := p.TaskByID(id)
	if !ok {
		t.Fatalf("task %q not found", id)
	}
	return task.Status
}

func TestLoad(t *testing.T) {
	m, _ := loadedModel(t)

	if m.loading {
		t.Fatal("expected loading to finish")
	}
	if len(m.project.Tasks) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(m.project.Tasks))
	}
	if len(m.toasts) != 1 || m.toasts[0].Message != "Loaded Launch (3 tasks)" {
		t.Errorf("expected load toast, got %+v", m.toasts)
	}
}

func TestLoadError(t *testing.T) {
	repo := &memoryRepo{loadErr: errors.New("disk on fire")}
	m := newTestModel(t, repo)

	if m.loadErr == nil {
		t.Fatal("expected load error")
	}
	if !strings.Contains(m.View(), "Could not load project: disk on fire") {
		t.Errorf("expected error in view, got:\n%s", m.View())
	}

	// commands are disabled until a load succeeds
	m, msg := press(t, m, "b")
	if msg != nil || repo.saves != 0 {
		t.Errorf("expected no save, got %v", msg)
	}

	repo.loadErr = nil
	repo.project = testProject()
	next, cmd := m.Update(keyMsg("r"))
	m = send(t, next.(Model), cmd())
	if m.loadErr != nil || len(m.project.Tasks) != 3 {
		t.Errorf("expected reload to recover, got err=%v tasks=%d", m.loadErr, len(m.project.Tasks))
	}
}

func TestViewSwitching(t *testing.T) {
	m, _ := loadedModel(t)

	tests := []struct {
		key  string
		want types.View
	}{
		{"tab", types.ViewTable},
		{"tab", types.ViewGantt},
		{"shift+tab", types.ViewTable},
		{"4", types.ViewBoard},
		{"tab", types.ViewDashboard},
		{"3", types.ViewGantt},
	}
	for _, tt := range tests {
		m, _ = press(t, m, tt.key)
		if m.view != tt.want {
			t.Errorf("after %q view = %s, want %s", tt.key, m.view, tt.want)
		}
	}
}

func TestBoardMoveChangesStatus(t *testing.T) {
	m, repo := loadedModel(t)
	m.view = types.ViewBoard

	m, msg := press(t, m, "L")

	if _, ok := msg.(savedMsg); !ok {
		t.Fatalf("expected savedMsg, got %T", msg)
	}
	if got := taskStatus(t, m.project, "b"); got != "in_progress" {
		t.Errorf("model status = %q, want in_progress", got)
	}
	if got := taskStatus(t, repo.project, "b"); got != "in_progress" {
		t.Errorf("saved status = %q, want in_progress", got)
	}
	if m.boardCursor != (board.Cursor{Column: 1, Task: 0}) {
		t.Errorf("cursor should follow the card, got %+v", m.boardCursor)
	}

	task, _ := m.project.TaskByID("b")
	last := task.ChangeHistory[len(task.ChangeHistory)-1]
	if last.Justification != commands.StatusChangeJustification || last.Actor != "tui-test" {
		t.Errorf("unexpected change log %+v", last)
	}

	// nothing left of the first column
	m, msg = press(t, m, "H", "H")
	if got := taskStatus(t, m.project, "b"); got != "todo" {
		t.Errorf("status after moving back = %q, want todo", got)
	}
	if msg != nil {
		t.Errorf("expected no command at the left edge, got %T", msg)
	}
}

func TestBoardBulkMove(t *testing.T) {
	m, repo := loadedModel(t)
	m.view = types.ViewBoard

	m, _ = press(t, m, " ", "j", " ")
	if len(m.selected) != 2 {
		t.Fatalf("expected 2 selected, got %v", m.selected)
	}

	m, msg := press(t, m, "L")
	if _, ok := msg.(savedMsg); !ok {
		t.Fatalf("expected savedMsg, got %T", msg)
	}
	for _, id := range []string{"b", "c"} {
		if got := taskStatus(t, repo.project, id); got != "in_progress" {
			t.Errorf("%s status = %q, want in_progress", id, got)
		}
	}

	m, _ = press(t, m, "esc")
	if len(m.selected) != 0 {
		t.Errorf("esc should clear the selection, got %v", m.selected)
	}
}

func TestTableStatusShift(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable

	// cursor on "Design" which is already in the last status
	m, msg := press(t, m, ">")
	if msg != nil {
		t.Errorf("expected no command past the last status, got %T", msg)
	}

	m, _ = press(t, m, "j", ">")
	if got := taskStatus(t, m.project, "b"); got != "in_progress" {
		t.Errorf("status = %q, want in_progress", got)
	}
}

func TestBaselineSaveAndClear(t *testing.T) {
	m, repo := loadedModel(t)

	m, _ = press(t, m, "b")
	if m.project.BaselineSavedAt == nil || !m.project.BaselineSavedAt.Equal(fixedNow) {
		t.Fatalf("expected baseline saved at %v, got %v", fixedNow, m.project.BaselineSavedAt)
	}
	if repo.project.BaselineSavedAt == nil {
		t.Error("baseline was not persisted")
	}

	m, _ = press(t, m, "B")
	if m.mode != types.ModeConfirm {
		t.Fatalf("expected confirm mode, got %s", m.mode)
	}
	m, _ = press(t, m, "n")
	if m.mode != types.ModeNormal || m.project.BaselineSavedAt == nil {
		t.Error("cancel should keep the baseline")
	}

	m, _ = press(t, m, "B", "y")
	if m.project.BaselineSavedAt != nil {
		t.Error("expected baseline cleared")
	}
	task, _ := m.project.TaskByID("a")
	if task.HasBaseline() {
		t.Error("expected task baseline cleared")
	}
}

func TestDeleteWithConfirm(t *testing.T) {
	m, repo := loadedModel(t)
	m.view = types.ViewTable

	m, msg := press(t, m, "j", "x")
	if msg != nil || m.mode != types.ModeConfirm {
		t.Fatalf("expected confirmation before deleting, got %T mode %s", msg, m.mode)
	}
	if !strings.Contains(m.View(), `Delete "Build" and its subtasks?`) {
		t.Errorf("expected prompt in view:\n%s", m.View())
	}

	m, _ = press(t, m, "y")
	if len(m.project.Tasks) != 1 || m.project.Tasks[0].ID != "a" {
		t.Errorf("expected only task a left, got %+v", m.project.Tasks)
	}
	if len(repo.project.Tasks) != 1 {
		t.Errorf("expected delete to be saved, got %d tasks", len(repo.project.Tasks))
	}
	if m.tableCursor != 0 {
		t.Errorf("cursor should clamp to the remaining row, got %d", m.tableCursor)
	}
}

func TestConfirmDialogKeys(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable

	// enter answers the highlighted button, which starts on No
	m, _ = press(t, m, "x", "enter")
	if len(m.project.Tasks) != 3 || m.mode != types.ModeNormal {
		t.Fatalf("enter on No should cancel, got %d tasks mode %s", len(m.project.Tasks), m.mode)
	}
	if !m.overlays.IsEmpty() {
		t.Error("expected dialog popped")
	}

	m, _ = press(t, m, "x", "h", "enter")
	if len(m.project.Tasks) != 2 {
		t.Errorf("expected Design deleted, got %d tasks", len(m.project.Tasks))
	}
}

func TestFilterMenu(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable
	m, _ = press(t, m, "j", "j")

	m, _ = press(t, m, "f")
	if m.mode != types.ModeMenu {
		t.Fatalf("expected menu mode, got %s", m.mode)
	}
	if !strings.Contains(m.View(), "Filter") {
		t.Errorf("expected filter menu in view:\n%s", m.View())
	}

	m, _ = press(t, m, "t")
	if !m.filter.HideSubtasks {
		t.Fatal("expected subtasks hidden")
	}
	if rows := m.tableRows(); len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
	if m.tableCursor != 1 {
		t.Errorf("cursor should clamp to the last row, got %d", m.tableCursor)
	}

	m, _ = press(t, m, "s", "1")
	if !m.filter.Status["todo"] {
		t.Error("expected todo status filter")
	}

	m, _ = press(t, m, "esc")
	if m.mode != types.ModeNormal || !m.overlays.IsEmpty() {
		t.Errorf("expected menu closed, got mode %s", m.mode)
	}
	if !m.filter.IsActive() {
		t.Error("closing the menu should keep the filter")
	}
}

func TestFilterMenuOnlyOnListViews(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewDashboard

	m, _ = press(t, m, "f")
	if m.mode != types.ModeNormal || !m.overlays.IsEmpty() {
		t.Errorf("f should do nothing on the dashboard, got mode %s", m.mode)
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewGantt

	m, _ = press(t, m, "?")
	if m.mode != types.ModeMenu {
		t.Fatalf("expected menu mode, got %s", m.mode)
	}
	if !strings.Contains(m.View(), "Keys") {
		t.Errorf("expected help in view:\n%s", m.View())
	}

	// keys go to the overlay, not the chart
	m, _ = press(t, m, "d")
	if m.zoom != timeline.ZoomWeek {
		t.Errorf("zoom changed behind the overlay: %s", m.zoom)
	}

	m, _ = press(t, m, "?")
	if m.mode != types.ModeNormal || !m.overlays.IsEmpty() {
		t.Errorf("expected help closed, got mode %s", m.mode)
	}
}

func TestDuplicate(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable

	m, _ = press(t, m, "D")

	if len(m.project.Tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(m.project.Tasks))
	}
	if m.project.Tasks[3].Name != "Design (Copy)" {
		t.Errorf("unexpected duplicate %q", m.project.Tasks[3].Name)
	}
}

func TestRejectedCommand(t *testing.T) {
	m, repo := loadedModel(t)

	next, cmd := m.apply(commands.DeleteTask{TaskID: "missing"}, "")

	if cmd != nil {
		t.Error("expected no save for a rejected command")
	}
	if repo.saves != 0 || next.version != 0 {
		t.Errorf("project should be unchanged, saves=%d version=%d", repo.saves, next.version)
	}
	if last := next.toasts[len(next.toasts)-1]; last.Level != types.ToastError {
		t.Errorf("expected error toast, got %+v", last)
	}
}

func TestSaveError(t *testing.T) {
	m, repo := loadedModel(t)
	repo.saveErr = errors.New("read-only")

	m, msg := press(t, m, "b")
	m = send(t, m, msg)

	last := m.toasts[len(m.toasts)-1]
	if last.Level != types.ToastError || last.Message != "Save failed: read-only" {
		t.Errorf("unexpected toast %+v", last)
	}
}

func TestSearchFiltersTable(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable

	m, _ = press(t, m, "/")
	if m.mode != types.ModeSearch {
		t.Fatalf("expected search mode, got %s", m.mode)
	}
	m, _ = press(t, m, "b", "u")
	if got := len(m.tableRows()); got != 1 {
		t.Errorf("expected 1 matching row, got %d", got)
	}

	m, _ = press(t, m, "enter")
	if m.mode != types.ModeNormal || m.filter.SearchQuery != "bu" {
		t.Errorf("enter should keep the filter, got mode %s query %q", m.mode, m.filter.SearchQuery)
	}

	m, _ = press(t, m, "esc")
	if m.filter.IsActive() || len(m.tableRows()) != 3 {
		t.Error("esc should clear the filter")
	}
}

func TestTableSortCycle(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewTable

	want := []domain.SortField{domain.SortByStart, domain.SortByEnd, domain.SortByPriority, domain.SortByName, ""}
	for _, field := range want {
		m, _ = press(t, m, "s")
		if m.sort.Field != field {
			t.Errorf("sort field = %q, want %q", m.sort.Field, field)
		}
	}

	m, _ = press(t, m, "s", "o")
	if m.sort.Order != domain.SortDesc {
		t.Error("o should flip the sort order")
	}
	if rows := m.tableRows(); rows[0].Task.ID != "c" {
		t.Errorf("latest start should come first, got %s", rows[0].Task.ID)
	}
}

func TestGanttKeys(t *testing.T) {
	m, _ := loadedModel(t)
	m.view = types.ViewGantt
	// one visible day column leaves room to scroll
	m = send(t, m, tea.WindowSizeMsg{Width: 30, Height: 30})

	tests := []struct {
		key  string
		want timeline.Zoom
	}{
		{"d", timeline.ZoomDay},
		{"m", timeline.ZoomMonth},
		{"w", timeline.ZoomWeek},
	}
	for _, tt := range tests {
		m, _ = press(t, m, tt.key)
		if m.zoom != tt.want {
			t.Errorf("after %q zoom = %s, want %s", tt.key, m.zoom, tt.want)
		}
	}

	m, _ = press(t, m, "v")
	if !m.showBaseline {
		t.Error("v should toggle baseline bars")
	}

	m, _ = press(t, m, "d", "l", "l")
	if m.ganttOffset != 2 {
		t.Errorf("expected offset 2, got %d", m.ganttOffset)
	}
	m, _ = press(t, m, "h")
	if m.ganttOffset != 1 {
		t.Errorf("expected offset 1, got %d", m.ganttOffset)
	}
	m, _ = press(t, m, "t")
	// today is 2024-03-06, two days after the chart starts
	if m.ganttOffset != 2 {
		t.Errorf("expected today offset 2, got %d", m.ganttOffset)
	}
}

func TestWatcherMessages(t *testing.T) {
	m, _ := loadedModel(t)
	events := make(chan store.Event, 1)
	m.events = events

	events <- store.Event{Path: "/tmp/planboard.json"}
	if msg, ok := m.waitForChange()().(fileChangedMsg); !ok || msg.event.Path != "/tmp/planboard.json" {
		t.Errorf("expected fileChangedMsg, got %+v", msg)
	}

	m = send(t, m, fileChangedMsg{event: store.Event{Removed: true}})
	if last := m.toasts[len(m.toasts)-1]; last.Level != types.ToastWarning {
		t.Errorf("expected warning toast for removal, got %+v", last)
	}

	close(events)
	if _, ok := m.waitForChange()().(watchClosedMsg); !ok {
		t.Error("expected watchClosedMsg after close")
	}
	m = send(t, m, watchClosedMsg{})
	if m.waitForChange() != nil {
		t.Error("expected no wait after the watcher closed")
	}
}

func TestSaverKeepsNewest(t *testing.T) {
	repo := &memoryRepo{}
	acks := 0
	sv := &saver{repo: repo, ack: func() { acks++ }}

	newer := testProject()
	newer.Name = "v2"
	older := testProject()
	older.Name = "v1"

	if err := sv.save(2, newer); err != nil {
		t.Fatal(err)
	}
	if err := sv.save(1, older); err != nil {
		t.Fatal(err)
	}

	if repo.project.Name != "v2" || repo.saves != 1 || acks != 1 {
		t.Errorf("stale save should be skipped: name=%s saves=%d acks=%d", repo.project.Name, repo.saves, acks)
	}
}

func TestToastExpiry(t *testing.T) {
	m, _ := loadedModel(t)
	if len(m.toasts) == 0 {
		t.Fatal("expected a toast after load")
	}

	m.now = func() time.Time { return fixedNow.Add(time.Minute) }
	m = send(t, m, tickMsg(fixedNow.Add(time.Minute)))

	if len(m.toasts) != 0 {
		t.Errorf("expected toasts to expire, got %+v", m.toasts)
	}
}
