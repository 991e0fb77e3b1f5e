package overlay

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/planboard/internal/domain"
)

// filterMode is the submenu the filter menu is showing
type filterMode string

const (
	filterModeNormal   filterMode = "normal"
	filterModeStatus   filterMode = "status"
	filterModePriority filterMode = "priority"
	filterModeAssignee filterMode = "assignee"
)

// maxChoices is how many statuses or assignees get a number key
const maxChoices = 9

// FilterMenu edits a filter in place
type FilterMenu struct {
	filter    *domain.Filter
	statuses  []domain.StatusDefinition
	assignees []string
	styles    *Styles
	mode      filterMode
}

// NewFilterMenu creates a menu over filter. Statuses and assignees past the
// ninth are not offered.
func NewFilterMenu(filter *domain.Filter, statuses []domain.StatusDefinition, assignees []string) *FilterMenu {
	return &FilterMenu{
		filter:    filter,
		statuses:  statuses[:min(len(statuses), maxChoices)],
		assignees: assignees[:min(len(assignees), maxChoices)],
		styles:    New(),
		mode:      filterModeNormal,
	}
}

// Init initializes the menu
func (m *FilterMenu) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *FilterMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.mode {
	case filterModeStatus:
		m.handleChoice(key, len(m.statuses), func(i int) { m.filter.ToggleStatus(m.statuses[i].ID) })
	case filterModeAssignee:
		m.handleChoice(key, len(m.assignees), func(i int) { m.filter.ToggleAssignee(m.assignees[i]) })
	case filterModePriority:
		m.handlePriorityMode(key)
	default:
		return m.handleNormalMode(key)
	}
	return m, nil
}

func (m *FilterMenu) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "f", "enter":
		return m, func() tea.Msg { return CloseOverlayMsg{} }
	case "s":
		m.mode = filterModeStatus
	case "p":
		m.mode = filterModePriority
	case "a":
		if len(m.assignees) > 0 {
			m.mode = filterModeAssignee
		}
	case "c":
		m.filter.CriticalOnly = !m.filter.CriticalOnly
	case "m":
		m.filter.MilestonesOnly = !m.filter.MilestonesOnly
	case "t":
		m.filter.HideSubtasks = !m.filter.HideSubtasks
	case "x":
		m.filter.Clear()
	}
	return m, nil
}

// handleChoice toggles the numbered entry and returns to the main menu
func (m *FilterMenu) handleChoice(msg tea.KeyMsg, n int, toggle func(i int)) {
	k := msg.String()
	if k == "esc" {
		m.mode = filterModeNormal
		return
	}
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		if i := int(k[0] - '1'); i < n {
			toggle(i)
			m.mode = filterModeNormal
		}
	}
}

func (m *FilterMenu) handlePriorityMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
	case "h":
		m.filter.TogglePriority(domain.PriorityHigh)
	case "m":
		m.filter.TogglePriority(domain.PriorityMedium)
	case "l":
		m.filter.TogglePriority(domain.PriorityLow)
	default:
		return
	}
	m.mode = filterModeNormal
}

func (m *FilterMenu) check(on bool) string {
	if on {
		return m.styles.Check.Render("✓")
	}
	return " "
}

func (m *FilterMenu) item(key, label string, on bool) string {
	return fmt.Sprintf("%s %s %s", m.check(on), m.styles.MenuKey.Render(key), m.styles.MenuItem.Render(label))
}

// View renders the current menu
func (m *FilterMenu) View() string {
	var lines []string
	switch m.mode {
	case filterModeStatus:
		lines = append(lines, m.styles.MenuHeader.Render("Status"))
		for i, s := range m.statuses {
			lines = append(lines, m.item(fmt.Sprint(i+1), s.Name, m.filter.Status[s.ID]))
		}
	case filterModeAssignee:
		lines = append(lines, m.styles.MenuHeader.Render("Assignee"))
		for i, a := range m.assignees {
			lines = append(lines, m.item(fmt.Sprint(i+1), a, m.filter.Assignee[a]))
		}
	case filterModePriority:
		lines = append(lines,
			m.styles.MenuHeader.Render("Priority"),
			m.item("h", "High", m.filter.Priority[domain.PriorityHigh]),
			m.item("m", "Medium", m.filter.Priority[domain.PriorityMedium]),
			m.item("l", "Low", m.filter.Priority[domain.PriorityLow]),
		)
	default:
		lines = append(lines,
			m.item("s", "Status"+m.summary(len(m.filter.Status)), len(m.filter.Status) > 0),
			m.item("p", "Priority"+m.summary(len(m.filter.Priority)), len(m.filter.Priority) > 0),
		)
		if len(m.assignees) > 0 {
			lines = append(lines, m.item("a", "Assignee"+m.summary(len(m.filter.Assignee)), len(m.filter.Assignee) > 0))
		}
		lines = append(lines,
			m.item("c", "Critical only", m.filter.CriticalOnly),
			m.item("m", "Milestones only", m.filter.MilestonesOnly),
			m.item("t", "Hide subtasks", m.filter.HideSubtasks),
			m.item("x", "Clear all", false),
		)
	}

	footer := "Esc: close"
	if m.mode != filterModeNormal {
		footer = "Esc: back"
	}
	lines = append(lines, m.styles.Footer.Render(footer))
	return strings.Join(lines, "\n")
}

func (m *FilterMenu) summary(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d)", n)
}

// Title returns the menu title
func (m *FilterMenu) Title() string {
	return "Filter"
}

// Size returns the menu dimensions
func (m *FilterMenu) Size() (width, height int) {
	return 36, 14
}
