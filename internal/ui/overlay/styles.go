package overlay

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/riordanpawley/planboard/internal/ui/styles"
)

// Styles holds the overlay styles
type Styles struct {
	Overlay        lipgloss.Style
	Title          lipgloss.Style
	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style
	MenuKey        lipgloss.Style
	MenuHeader     lipgloss.Style
	Check          lipgloss.Style
	Footer         lipgloss.Style
}

// New creates overlay styles from the theme palette
func New() *Styles {
	return &Styles{
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Surface2).
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(styles.Text).
			Bold(true).
			MarginBottom(1),

		MenuItem: lipgloss.NewStyle().
			Foreground(styles.Text),

		MenuItemActive: lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true),

		MenuKey: lipgloss.NewStyle().
			Foreground(styles.Yellow).
			Bold(true),

		MenuHeader: lipgloss.NewStyle().
			Foreground(styles.Sapphire).
			Bold(true),

		Check: lipgloss.NewStyle().
			Foreground(styles.Green),

		Footer: lipgloss.NewStyle().
			Foreground(styles.Subtext0).
			MarginTop(1),
	}
}
