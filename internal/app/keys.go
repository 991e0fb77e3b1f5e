package app

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/planboard/internal/core/commands"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/types"
	"github.com/riordanpawley/planboard/internal/ui/board"
	"github.com/riordanpawley/planboard/internal/ui/gantt"
	"github.com/riordanpawley/planboard/internal/ui/overlay"
	"github.com/riordanpawley/planboard/internal/ui/table"
)

// sortCycle is the order "s" steps through; empty means tree order
var sortCycle = []domain.SortField{"", domain.SortByStart, domain.SortByEnd, domain.SortByPriority, domain.SortByName}

// handleKey processes keyboard input based on current mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+l":
		return m, tea.ClearScreen
	}

	switch m.mode {
	case types.ModeSearch:
		return m.handleSearchMode(msg)
	case types.ModeConfirm, types.ModeMenu:
		return m.handleOverlayKey(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNormalMode handles keys shared by every tab, then the tab's own
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.view = m.view.Next()
		return m, nil
	case "shift+tab":
		m.view = m.view.Prev()
		return m, nil
	case "1", "2", "3", "4":
		m.view = types.Views[int(msg.Runes[0]-'1')]
		return m, nil
	case "r":
		return m, m.loadCmd()
	case "?":
		return m.openMenu(overlay.NewHelpOverlay(m.view))
	}

	if m.loading || m.loadErr != nil {
		return m, nil
	}

	switch msg.String() {
	case "b":
		return m.apply(commands.SaveBaseline{}, "Baseline saved")
	case "B":
		if m.project.BaselineSavedAt == nil {
			m.addToast(types.ToastInfo, "No baseline to clear")
			return m, nil
		}
		return m.askConfirm("Clear the baseline for every task?", commands.DeleteBaseline{}, "Baseline cleared")
	case "/":
		if m.view == types.ViewTable || m.view == types.ViewBoard {
			m.mode = types.ModeSearch
			m.search.SetValue(m.filter.SearchQuery)
			return m, m.search.Focus()
		}
	case "f":
		if m.view == types.ViewTable || m.view == types.ViewBoard {
			return m.openMenu(overlay.NewFilterMenu(m.filter, m.project.Configuration.Statuses, m.assignees()))
		}
	case "esc":
		if m.filter.IsActive() || len(m.selected) > 0 {
			m.filter.Clear()
			m.selected = make(map[string]bool)
			m.clampCursors()
			return m, nil
		}
	}

	switch m.view {
	case types.ViewTable:
		return m.handleTableKey(msg)
	case types.ViewGantt:
		return m.handleGanttKey(msg)
	case types.ViewBoard:
		return m.handleBoardKey(msg)
	}
	return m, nil
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.tableRows()
	switch msg.String() {
	case "j", "down":
		m.tableCursor = min(m.tableCursor+1, max(len(rows)-1, 0))
	case "k", "up":
		m.tableCursor = max(m.tableCursor-1, 0)
	case "g", "home":
		m.tableCursor = 0
	case "G", "end":
		m.tableCursor = max(len(rows)-1, 0)
	case "ctrl+d":
		m.tableCursor = min(m.tableCursor+m.halfPage(), max(len(rows)-1, 0))
	case "ctrl+u":
		m.tableCursor = max(m.tableCursor-m.halfPage(), 0)
	case "s":
		i := slices.Index(sortCycle, m.sort.Field)
		m.sort = domain.Sort{Field: sortCycle[(i+1)%len(sortCycle)]}
		m.tableCursor = 0
	case "o":
		if m.sort.Field != "" {
			m.sort.Toggle(m.sort.Field)
		}
	case "c":
		m.filter.CriticalOnly = !m.filter.CriticalOnly
		m.tableCursor = 0
	case "m":
		m.filter.MilestonesOnly = !m.filter.MilestonesOnly
		m.tableCursor = 0
	case " ":
		if task, ok := m.currentTask(); ok {
			m.toggleSelected(task.ID)
		}
	case "x":
		return m.confirmDelete()
	case "D":
		return m.duplicate()
	case ">", "<":
		if task, ok := m.currentTask(); ok {
			dir := 1
			if msg.String() == "<" {
				dir = -1
			}
			return m.shiftStatus(task, dir)
		}
	}
	m.tableOffset = table.ScrollOffset(m.tableCursor, m.tableOffset, m.bodyHeight())
	return m, nil
}

func (m Model) handleGanttKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		m.setZoom(timeline.ZoomDay)
		return m, nil
	case "w":
		m.setZoom(timeline.ZoomWeek)
		return m, nil
	case "m":
		m.setZoom(timeline.ZoomMonth)
		return m, nil
	case "v":
		m.showBaseline = !m.showBaseline
		return m, nil
	case "h", "left":
		m.ganttOffset = max(m.ganttOffset-1, 0)
		return m, nil
	case "l", "right":
		tl := m.timeline()
		m.ganttOffset = min(m.ganttOffset+1, max(tl.Columns-gantt.VisibleColumns(tl, m.ganttOptions()), 0))
		return m, nil
	case "t":
		m.ganttOffset = m.todayOffset()
		return m, nil
	}

	m.syncViewport()
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.boardColumns()
	if len(columns) == 0 {
		return m, nil
	}
	c := m.boardCursor
	switch msg.String() {
	case "j", "down":
		c.Task++
	case "k", "up":
		c.Task--
	case "h", "left":
		c.Column--
	case "l", "right":
		c.Column++
	case "g":
		c.Task = 0
	case "G":
		c.Task = len(columns[c.Clamp(columns).Column].Tasks) - 1
	case " ":
		if task, ok := c.Selected(columns); ok {
			m.toggleSelected(task.ID)
		}
	case "x":
		return m.confirmDelete()
	case "D":
		return m.duplicate()
	case "H", "L":
		dir := 1
		if msg.String() == "H" {
			dir = -1
		}
		return m.moveOnBoard(columns, dir)
	}
	m.boardCursor = c.Clamp(columns)
	return m, nil
}

// moveOnBoard moves the selection, or the card under the cursor, to the
// neighbouring status column and keeps the cursor on it
func (m Model) moveOnBoard(columns []board.Column, dir int) (tea.Model, tea.Cmd) {
	c := m.boardCursor.Clamp(columns)
	target, ok := board.Neighbor(columns, c.Column, dir)
	if !ok {
		return m, nil
	}

	var next Model
	var cmd tea.Cmd
	if ids := m.selectedIDs(); len(ids) > 0 {
		next, cmd = m.apply(commands.BulkMove{TaskIDs: ids, Status: target.ID}, fmt.Sprintf("Moved %d tasks to %s", len(ids), target.Name))
	} else {
		task, ok := c.Selected(columns)
		if !ok {
			return m, nil
		}
		next, cmd = m.apply(commands.ChangeStatus{TaskID: task.ID, Status: target.ID}, "")
		next.focusOnBoard(task.ID)
	}
	return next, cmd
}

// shiftStatus moves a task one configured status left or right
func (m Model) shiftStatus(task domain.Task, dir int) (tea.Model, tea.Cmd) {
	statuses := m.project.Configuration.Statuses
	i := slices.IndexFunc(statuses, func(s domain.StatusDefinition) bool { return s.ID == task.Status })
	if i < 0 || i+dir < 0 || i+dir >= len(statuses) {
		return m, nil
	}
	target := statuses[i+dir]
	return m.apply(commands.ChangeStatus{TaskID: task.ID, Status: target.ID}, fmt.Sprintf("%s → %s", task.Name, target.Name))
}

func (m Model) confirmDelete() (tea.Model, tea.Cmd) {
	if ids := m.selectedIDs(); len(ids) > 0 {
		return m.askConfirm(fmt.Sprintf("Delete %d selected tasks and their subtasks?", len(ids)),
			commands.BulkDelete{TaskIDs: ids}, fmt.Sprintf("Deleted %d tasks", len(ids)))
	}
	task, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	return m.askConfirm(fmt.Sprintf("Delete %q and its subtasks?", task.Name),
		commands.DeleteTask{TaskID: task.ID}, "Deleted "+task.Name)
}

func (m Model) duplicate() (tea.Model, tea.Cmd) {
	ids := m.selectedIDs()
	if len(ids) == 0 {
		task, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		ids = []string{task.ID}
	}
	return m.apply(commands.BulkDuplicate{TaskIDs: ids}, fmt.Sprintf("Duplicated %d tasks", len(ids)))
}

func (m Model) askConfirm(prompt string, cmd commands.Command, success string) (tea.Model, tea.Cmd) {
	m.confirm = &pendingConfirm{cmd: cmd, success: success}
	m.mode = types.ModeConfirm
	return m, m.overlays.Push(overlay.NewConfirmDialog("Confirm", prompt))
}

func (m Model) openMenu(o overlay.Overlay) (tea.Model, tea.Cmd) {
	m.mode = types.ModeMenu
	return m, m.overlays.Push(o)
}

// handleOverlayKey forwards keys to the top overlay. The filter menu edits
// m.filter in place, so cursors are re-clamped after every key.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.overlays.Update(msg)
	m.clampCursors()
	return m, cmd
}

// closeOverlay returns to normal mode once the stack is empty
func (m *Model) closeOverlay() {
	if m.overlays.IsEmpty() {
		m.mode = types.ModeNormal
		m.confirm = nil
	}
	m.clampCursors()
}

// handleSearchMode edits the filter query live
func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = types.ModeNormal
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = types.ModeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.filter.SearchQuery = ""
		m.clampCursors()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.SearchQuery = m.search.Value()
	m.tableCursor = 0
	m.tableOffset = 0
	m.clampCursors()
	return m, cmd
}
