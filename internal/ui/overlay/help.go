package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riordanpawley/planboard/internal/types"
)

// KeyBinding represents a single keybinding entry
type KeyBinding struct {
	Key         string
	Description string
}

// KeyCategory represents a category of keybindings
type KeyCategory struct {
	Name     string
	Bindings []KeyBinding
}

// helpViewHeight is how many content lines fit before scrolling
const helpViewHeight = 18

// HelpOverlay lists the global keys and those of one tab
type HelpOverlay struct {
	view   types.View
	styles *Styles
	scroll int
}

// NewHelpOverlay creates a help overlay for view
func NewHelpOverlay(view types.View) *HelpOverlay {
	return &HelpOverlay{
		view:   view,
		styles: New(),
	}
}

// Init initializes the overlay
func (h *HelpOverlay) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (h *HelpOverlay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	maxScroll := max(len(h.lines())-helpViewHeight, 0)
	switch key.String() {
	case "esc", "q", "?":
		return h, func() tea.Msg { return CloseOverlayMsg{} }
	case "j", "down":
		h.scroll = min(h.scroll+1, maxScroll)
	case "k", "up":
		h.scroll = max(h.scroll-1, 0)
	case "g":
		h.scroll = 0
	case "G":
		h.scroll = maxScroll
	}
	return h, nil
}

func (h *HelpOverlay) lines() []string {
	var lines []string
	for i, cat := range Categories(h.view) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, h.styles.MenuHeader.Render(cat.Name+":"))
		for _, b := range cat.Bindings {
			key := h.styles.MenuKey.Render(b.Key + strings.Repeat(" ", max(10-len(b.Key), 1)))
			lines = append(lines, "  "+key+h.styles.MenuItem.Render(b.Description))
		}
	}
	return lines
}

// View renders the visible part of the reference
func (h *HelpOverlay) View() string {
	lines := h.lines()
	end := min(h.scroll+helpViewHeight, len(lines))
	out := strings.Join(lines[h.scroll:end], "\n")
	if len(lines) > helpViewHeight {
		out += "\n" + h.styles.Footer.Render("j/k: scroll  Esc: close")
	}
	return out
}

// Title returns the overlay title
func (h *HelpOverlay) Title() string {
	return "Keys · " + h.view.String()
}

// Size returns the overlay dimensions
func (h *HelpOverlay) Size() (width, height int) {
	return 52, helpViewHeight + 6
}

// Categories returns the global keys followed by those of view
func Categories(view types.View) []KeyCategory {
	cats := []KeyCategory{{
		Name: "Global",
		Bindings: []KeyBinding{
			{Key: "tab/S-tab", Description: "Next / previous tab"},
			{Key: "1-4", Description: "Jump to tab"},
			{Key: "b", Description: "Save baseline"},
			{Key: "B", Description: "Clear baseline"},
			{Key: "r", Description: "Reload project file"},
			{Key: "?", Description: "This help"},
			{Key: "q", Description: "Quit"},
		},
	}}

	switch view {
	case types.ViewTable:
		cats = append(cats, KeyCategory{
			Name: "Tasks",
			Bindings: []KeyBinding{
				{Key: "j/k", Description: "Move cursor"},
				{Key: "g/G", Description: "First / last row"},
				{Key: "C-d/C-u", Description: "Half page down / up"},
				{Key: "s", Description: "Cycle sort field"},
				{Key: "o", Description: "Flip sort order"},
				{Key: "/", Description: "Search by name or id"},
				{Key: "f", Description: "Filter menu"},
				{Key: "c/m", Description: "Critical / milestones only"},
				{Key: "space", Description: "Select task"},
				{Key: "</>", Description: "Previous / next status"},
				{Key: "D", Description: "Duplicate"},
				{Key: "x", Description: "Delete with subtasks"},
				{Key: "esc", Description: "Clear filter and selection"},
			},
		})
	case types.ViewGantt:
		cats = append(cats, KeyCategory{
			Name: "Gantt",
			Bindings: []KeyBinding{
				{Key: "d/w/m", Description: "Day / week / month zoom"},
				{Key: "h/l", Description: "Scroll time"},
				{Key: "j/k", Description: "Scroll tasks"},
				{Key: "t", Description: "Jump to today"},
				{Key: "v", Description: "Show baseline bars"},
			},
		})
	case types.ViewBoard:
		cats = append(cats, KeyCategory{
			Name: "Board",
			Bindings: []KeyBinding{
				{Key: "h/l", Description: "Move between columns"},
				{Key: "j/k", Description: "Move within column"},
				{Key: "H/L", Description: "Move task to previous / next status"},
				{Key: "space", Description: "Select task"},
				{Key: "/", Description: "Search by name or id"},
				{Key: "f", Description: "Filter menu"},
				{Key: "D", Description: "Duplicate"},
				{Key: "x", Description: "Delete with subtasks"},
			},
		})
	}
	return cats
}
