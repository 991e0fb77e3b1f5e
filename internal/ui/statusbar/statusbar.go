package statusbar

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/types"
	"github.com/riordanpawley/planboard/internal/ui/styles"
)

// StatusBar represents the status bar at the bottom of the TUI
type StatusBar struct {
	mode   types.Mode
	view   types.View
	info   string
	width  int
	styles *styles.Styles
}

// New creates a new StatusBar for the given mode and tab
func New(mode types.Mode, view types.View, width int, styles *styles.Styles) StatusBar {
	return StatusBar{
		mode:   mode,
		view:   view,
		width:  width,
		styles: styles,
	}
}

// WithInfo sets right-hand context such as the zoom level or filter query
func (sb StatusBar) WithInfo(info string) StatusBar {
	sb.info = info
	return sb
}

// Render renders the status bar as a string
func (sb StatusBar) Render() string {
	modeBadge := sb.styles.StatusMode.Render(sb.mode.String())

	parts := []string{modeBadge}
	if hints := GetHints(sb.mode, sb.view); hints != "" {
		parts = append(parts, sb.styles.StatusHint.Render(" │ "), sb.styles.StatusHint.Render(hints))
	}
	if sb.info != "" {
		parts = append(parts, sb.styles.StatusHint.Render(" │ "), sb.styles.StatusInfo.Render(sb.info))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	return sb.styles.StatusBar.Width(sb.width).MaxHeight(1).Render(content)
}
