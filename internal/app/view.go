package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/core/progress"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/types"
	"github.com/riordanpawley/planboard/internal/ui/board"
	"github.com/riordanpawley/planboard/internal/ui/dashboard"
	"github.com/riordanpawley/planboard/internal/ui/gantt"
	"github.com/riordanpawley/planboard/internal/ui/statusbar"
	"github.com/riordanpawley/planboard/internal/ui/table"
	"github.com/riordanpawley/planboard/internal/ui/toast"
)

// ganttHeaderLines are the coarse and fine header rows kept above the
// scrolling viewport
const ganttHeaderLines = 2

// View renders the whole screen
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.loading {
		return m.renderLoading()
	}

	toastView := toast.New(m.styles).Render(m.toasts, m.width)
	bodyHeight := m.bodyHeight()
	if toastView != "" {
		bodyHeight = max(bodyHeight-lipgloss.Height(toastView), 1)
	}

	var body string
	switch {
	case m.loadErr != nil:
		body = m.styles.ToastError.Render("Could not load project: " + m.loadErr.Error() + "\nPress r to retry.")
	case !m.overlays.IsEmpty():
		body = m.overlays.Render(m.overlayStyles, m.width, bodyHeight)
	default:
		body = m.renderBody(bodyHeight)
	}
	body = lipgloss.NewStyle().MaxWidth(m.width).Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	parts := []string{m.renderHeader(), body}
	if toastView != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toastView))
	}
	if m.mode == types.ModeSearch {
		parts = append(parts, m.search.View())
	} else {
		parts = append(parts, m.renderStatusBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// bodyHeight is the space between the tab header and the status bar
func (m Model) bodyHeight() int {
	return max(m.height-2, 1)
}

func (m Model) renderHeader() string {
	tabs := []string{m.styles.Title.Render(m.project.Name)}
	for i, v := range types.Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderStatusBar() string {
	var info []string
	if m.view == types.ViewGantt {
		info = append(info, "zoom: "+m.zoom.String())
		if m.showBaseline {
			info = append(info, "baseline bars")
		}
	}
	if m.filter.SearchQuery != "" {
		info = append(info, fmt.Sprintf("filter: %q", m.filter.SearchQuery))
	}
	if m.filter.CriticalOnly {
		info = append(info, "critical only")
	}
	if m.filter.MilestonesOnly {
		info = append(info, "milestones only")
	}
	if m.view == types.ViewTable && m.sort.Field != "" {
		dir := "asc"
		if m.sort.Order == domain.SortDesc {
			dir = "desc"
		}
		info = append(info, fmt.Sprintf("sort: %s %s", m.sort.Field, dir))
	}
	if len(m.selected) > 0 {
		info = append(info, fmt.Sprintf("%d selected", len(m.selected)))
	}
	return statusbar.New(m.mode, m.view, m.width, m.styles).WithInfo(strings.Join(info, "  ")).Render()
}

func (m Model) renderBody(height int) string {
	switch m.view {
	case types.ViewTable:
		return table.Render(m.tableRows(), m.project.Configuration, m.tableCursor, m.tableOffset, m.width, height, m.styles)
	case types.ViewGantt:
		return m.renderGantt(height)
	case types.ViewBoard:
		return board.Render(m.boardColumns(), m.boardCursor, m.selected, m.progressByTask(), m.phaseData(), m.styles, m.width, height)
	default:
		return dashboard.Render(dashboard.Summarize(m.project), m.width, m.styles)
	}
}

// renderGantt keeps the header rows fixed and scrolls task rows in the
// viewport
func (m Model) renderGantt(height int) string {
	m.viewport.Width = m.width
	m.viewport.Height = max(height-ganttHeaderLines, 1)
	chart := gantt.Render(m.timeline(), m.ganttOptions(), m.styles)
	lines := strings.Split(chart, "\n")
	if len(lines) <= ganttHeaderLines {
		return chart
	}
	m.viewport.SetContent(strings.Join(lines[ganttHeaderLines:], "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines[:ganttHeaderLines], "\n"), m.viewport.View())
}

// syncViewport sizes the viewport and loads the chart rows so scrolling
// keys act on the current content
func (m *Model) syncViewport() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.bodyHeight()-ganttHeaderLines, 1)
	lines := strings.Split(gantt.Render(m.timeline(), m.ganttOptions(), m.styles), "\n")
	if len(lines) > ganttHeaderLines {
		m.viewport.SetContent(strings.Join(lines[ganttHeaderLines:], "\n"))
	}
}

// renderLoading renders a centered loading spinner with message
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.spinner.View(),
		"Loading project...",
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// Derived views of the current project

func (m Model) tableRows() []table.Row {
	return table.Build(m.project, m.filter, &m.sort)
}

func (m Model) boardColumns() []board.Column {
	return board.BuildColumns(m.filter.Apply(m.project.Tasks), m.project.Configuration)
}

func (m Model) progressByTask() map[string]int {
	rollup := progress.Rollup(m.project.Tasks, m.project.Configuration)
	out := make(map[string]int, len(rollup))
	for id, n := range rollup {
		out[id] = n.Percent()
	}
	return out
}

// assignees lists the distinct assignees for the filter menu
func (m Model) assignees() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range m.project.Tasks {
		if t.Assignee != "" && !seen[t.Assignee] {
			seen[t.Assignee] = true
			out = append(out, t.Assignee)
		}
	}
	sort.Strings(out)
	return out
}

// phaseData computes dependency phases for the board's blocked markers
func (m Model) phaseData() map[string]phases.TaskPhaseInfo {
	return phases.Compute(m.project.Tasks).Phases
}

func (m Model) timeline() timeline.Timeline {
	return timeline.Build(m.project.Tasks, m.zoom, m.now())
}

func (m Model) ganttOptions() gantt.Options {
	return gantt.Options{
		Width:        m.width,
		LabelWidth:   m.labelWidth,
		Offset:       m.ganttOffset,
		Cursor:       -1,
		ShowBaseline: m.showBaseline,
	}
}

// todayOffset scrolls the chart so today sits in the first visible column
func (m Model) todayOffset() int {
	tl := m.timeline()
	if tl.Today == nil {
		return 0
	}
	return max(int(math.Floor(*tl.Today)), 0)
}

// setZoom changes the zoom and keeps the chart starting near the same date
func (m *Model) setZoom(z timeline.Zoom) {
	if z == m.zoom {
		return
	}
	before := m.timeline()
	var first domain.Date
	if m.ganttOffset < len(before.Fine) {
		first = before.Fine[m.ganttOffset].Date
	}
	m.zoom = z
	m.ganttOffset = 0
	if first.Valid() {
		if pos, ok := m.timeline().Position(first); ok {
			m.ganttOffset = max(int(math.Floor(pos)), 0)
		}
	}
	m.viewport.GotoTop()
}

func (m Model) currentTask() (domain.Task, bool) {
	switch m.view {
	case types.ViewTable:
		rows := m.tableRows()
		if m.tableCursor >= 0 && m.tableCursor < len(rows) {
			return rows[m.tableCursor].Task, true
		}
	case types.ViewBoard:
		return m.boardCursor.Selected(m.boardColumns())
	}
	return domain.Task{}, false
}

func (m *Model) toggleSelected(id string) {
	if m.selected[id] {
		delete(m.selected, id)
	} else {
		m.selected[id] = true
	}
}

// selectedIDs returns the selection in a stable order
func (m Model) selectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// focusOnBoard puts the board cursor on a task, wherever it now is
func (m *Model) focusOnBoard(id string) {
	for ci, col := range m.boardColumns() {
		for ti, t := range col.Tasks {
			if t.ID == id {
				m.boardCursor = board.Cursor{Column: ci, Task: ti}
				return
			}
		}
	}
}

// clampCursors keeps every cursor valid after the task set changes
func (m *Model) clampCursors() {
	rows := m.tableRows()
	m.tableCursor = max(0, min(m.tableCursor, len(rows)-1))
	m.tableOffset = table.ScrollOffset(m.tableCursor, min(m.tableOffset, m.tableCursor), m.bodyHeight())
	m.boardCursor = m.boardCursor.Clamp(m.boardColumns())
	if tl := m.timeline(); m.ganttOffset >= tl.Columns {
		m.ganttOffset = max(tl.Columns-1, 0)
	}
}

// halfPage is the table's half-screen jump
func (m Model) halfPage() int {
	return max((m.bodyHeight()-1)/2, 1)
}
