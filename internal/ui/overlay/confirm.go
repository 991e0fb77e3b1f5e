package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Keys carried by the SelectionMsg a ConfirmDialog sends
const (
	KeyYes = "yes"
	KeyNo  = "no"
)

// ConfirmDialog asks a yes/no question, defaulting to No
type ConfirmDialog struct {
	title    string
	message  string
	styles   *Styles
	selected bool // true = Yes
}

// NewConfirmDialog creates a dialog with the given title and question
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		title:   title,
		message: message,
		styles:  New(),
	}
}

func answer(yes bool) tea.Cmd {
	key := KeyNo
	if yes {
		key = KeyYes
	}
	return func() tea.Msg {
		return SelectionMsg{Key: key, Value: yes}
	}
}

// Init initializes the dialog
func (c *ConfirmDialog) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (c *ConfirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch key.String() {
	case "y", "Y":
		return c, answer(true)
	case "n", "N", "esc", "q":
		return c, answer(false)
	case "enter":
		return c, answer(c.selected)
	case "left", "h":
		c.selected = true
	case "right", "l", "tab":
		c.selected = false
	}
	return c, nil
}

// View renders the question and the two buttons
func (c *ConfirmDialog) View() string {
	var b strings.Builder
	if c.message != "" {
		b.WriteString(c.styles.MenuItem.Render(c.message))
		b.WriteString("\n\n")
	}

	yes, no := c.styles.MenuItem, c.styles.MenuItemActive
	if c.selected {
		yes, no = c.styles.MenuItemActive, c.styles.MenuItem
	}
	b.WriteString(yes.Render("[Y] Yes") + "    " + no.Render("[N] No"))
	b.WriteString("\n")
	b.WriteString(c.styles.Footer.Render("h/l: switch  Enter: choose  Esc: cancel"))
	return b.String()
}

// Title returns the dialog title
func (c *ConfirmDialog) Title() string {
	return c.title
}

// Size returns the dialog dimensions
func (c *ConfirmDialog) Size() (width, height int) {
	return 56, strings.Count(c.message, "\n") + 7
}
