package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/domain"
)

// Catppuccin Macchiato palette
var (
	Base     = lipgloss.Color("#24273a")
	Mantle   = lipgloss.Color("#1e2030")
	Surface0 = lipgloss.Color("#363a4f")
	Surface1 = lipgloss.Color("#494d64")
	Surface2 = lipgloss.Color("#5b6078")
	Overlay0 = lipgloss.Color("#6e738d")
	Overlay1 = lipgloss.Color("#8087a2")
	Subtext0 = lipgloss.Color("#a5adcb")
	Text     = lipgloss.Color("#cad3f5")

	Mauve    = lipgloss.Color("#c6a0f6")
	Red      = lipgloss.Color("#ed8796")
	Peach    = lipgloss.Color("#f5a97f")
	Yellow   = lipgloss.Color("#eed49f")
	Green    = lipgloss.Color("#a6da95")
	Teal     = lipgloss.Color("#8bd5ca")
	Sapphire = lipgloss.Color("#7dc4e4")
	Blue     = lipgloss.Color("#8aadf4")
	Lavender = lipgloss.Color("#b7bdf8")
)

// PriorityColors maps priorities to badge colors
var PriorityColors = map[domain.Priority]lipgloss.Color{
	domain.PriorityHigh:   Red,
	domain.PriorityMedium: Yellow,
	domain.PriorityLow:    Green,
}

// PriorityColor returns the color for p, treating unknown values as Medium
func PriorityColor(p domain.Priority) lipgloss.Color {
	return PriorityColors[p.Normalize()]
}

// StatusColor returns the configured color of a status, or Overlay1 when the
// status has none
func StatusColor(def domain.StatusDefinition) lipgloss.Color {
	c := strings.TrimSpace(def.Color)
	if c == "" {
		return Overlay1
	}
	return lipgloss.Color(c)
}
