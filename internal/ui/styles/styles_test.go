package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/domain"
)

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}
}

func TestPriorityColor(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.Priority
		want     lipgloss.Color
	}{
		{"high", domain.PriorityHigh, Red},
		{"medium", domain.PriorityMedium, Yellow},
		{"low", domain.PriorityLow, Green},
		{"empty defaults to medium", "", Yellow},
		{"unknown defaults to medium", "Urgent", Yellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriorityColor(tt.priority); got != tt.want {
				t.Errorf("PriorityColor(%q) = %s, want %s", tt.priority, got, tt.want)
			}
			rendered := New().PriorityBadge(tt.priority).Render(tt.priority.String())
			if len(rendered) == 0 {
				t.Error("PriorityBadge rendered empty string")
			}
		})
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		name string
		def  domain.StatusDefinition
		want lipgloss.Color
	}{
		{"configured", domain.StatusDefinition{ID: "todo", Color: "#8aadf4"}, lipgloss.Color("#8aadf4")},
		{"trimmed", domain.StatusDefinition{ID: "x", Color: " #ffffff "}, lipgloss.Color("#ffffff")},
		{"missing color", domain.StatusDefinition{ID: "x"}, Overlay1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusColor(tt.def); got != tt.want {
				t.Errorf("StatusColor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestThemeColors(t *testing.T) {
	colors := []struct {
		name  string
		color string
	}{
		{"Base", string(Base)},
		{"Blue", string(Blue)},
		{"Red", string(Red)},
		{"Green", string(Green)},
		{"Yellow", string(Yellow)},
	}

	for _, c := range colors {
		t.Run(c.name, func(t *testing.T) {
			if c.color == "" {
				t.Errorf("%s color is empty", c.name)
			}
			if c.color[0] != '#' {
				t.Errorf("%s color doesn't start with #: %s", c.name, c.color)
			}
		})
	}
}
