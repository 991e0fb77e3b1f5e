package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/domain"
)

// Styles holds all the UI styles
type Styles struct {
	// Header and tabs
	Title     lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Muted     lipgloss.Style

	// Board
	Column             lipgloss.Style
	ColumnHeader       lipgloss.Style
	ColumnHeaderActive lipgloss.Style

	// Cards
	Card         lipgloss.Style
	CardActive   lipgloss.Style
	CardSelected lipgloss.Style
	TaskName     lipgloss.Style

	// Badges
	PriorityBadge func(p domain.Priority) lipgloss.Style
	StatusBadge   func(def domain.StatusDefinition) lipgloss.Style
	FlagBadge     lipgloss.Style

	// Dashboard
	Metric      lipgloss.Style
	MetricRisk  lipgloss.Style
	MetricLabel lipgloss.Style
	MetricValue lipgloss.Style
	MetricBad   lipgloss.Style
	MetricGood  lipgloss.Style

	// Table
	TableHeader    lipgloss.Style
	TableRow       lipgloss.Style
	TableRowActive lipgloss.Style

	// Gantt
	GanttHeader  lipgloss.Style
	GanttLabel   lipgloss.Style
	BarPlanned   lipgloss.Style
	BarCritical  lipgloss.Style
	BarBaseline  lipgloss.Style
	Milestone    lipgloss.Style
	TodayMarker  lipgloss.Style
	GanttGrid    lipgloss.Style
	GanttNoDates lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusMode lipgloss.Style
	StatusHint lipgloss.Style
	StatusInfo lipgloss.Style

	// Toasts
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// New creates a new Styles instance with Catppuccin Macchiato theme
func New() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(Text).
			Bold(true).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(Overlay1).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(Base).
			Background(Lavender).
			Bold(true).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(Overlay0),

		Column: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1).
			Padding(0, 1),

		ColumnHeader: lipgloss.NewStyle().
			Foreground(Subtext0).
			Bold(true).
			Padding(0, 1),

		ColumnHeaderActive: lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1).
			Padding(0, 1),

		CardActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Lavender).
			Padding(0, 1),

		CardSelected: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Mauve).
			Padding(0, 1),

		TaskName: lipgloss.NewStyle().
			Foreground(Text),

		PriorityBadge: func(p domain.Priority) lipgloss.Style {
			return lipgloss.NewStyle().
				Foreground(Base).
				Background(PriorityColor(p)).
				Padding(0, 1).
				Bold(true)
		},

		StatusBadge: func(def domain.StatusDefinition) lipgloss.Style {
			return lipgloss.NewStyle().
				Foreground(StatusColor(def)).
				Bold(true)
		},

		FlagBadge: lipgloss.NewStyle().
			Foreground(Subtext0).
			Background(Surface1).
			Padding(0, 1),

		Metric: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 2),

		MetricRisk: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Padding(0, 2),

		MetricLabel: lipgloss.NewStyle().
			Foreground(Subtext0),

		MetricValue: lipgloss.NewStyle().
			Foreground(Text).
			Bold(true),

		MetricBad: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),

		MetricGood: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),

		TableHeader: lipgloss.NewStyle().
			Foreground(Subtext0).
			Bold(true).
			Underline(true),

		TableRow: lipgloss.NewStyle().
			Foreground(Text),

		TableRowActive: lipgloss.NewStyle().
			Foreground(Base).
			Background(Lavender),

		GanttHeader: lipgloss.NewStyle().
			Foreground(Subtext0).
			Bold(true),

		GanttLabel: lipgloss.NewStyle().
			Foreground(Text),

		BarPlanned: lipgloss.NewStyle().
			Foreground(Blue),

		BarCritical: lipgloss.NewStyle().
			Foreground(Red),

		BarBaseline: lipgloss.NewStyle().
			Foreground(Overlay0),

		Milestone: lipgloss.NewStyle().
			Foreground(Peach).
			Bold(true),

		TodayMarker: lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true),

		GanttGrid: lipgloss.NewStyle().
			Foreground(Surface1),

		GanttNoDates: lipgloss.NewStyle().
			Foreground(Overlay0).
			Italic(true),

		StatusBar: lipgloss.NewStyle().
			Background(Surface0).
			Foreground(Subtext0).
			Padding(0, 1),

		StatusMode: lipgloss.NewStyle().
			Background(Blue).
			Foreground(Base).
			Bold(true).
			Padding(0, 1),

		StatusHint: lipgloss.NewStyle().
			Foreground(Overlay1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(Subtext0),

		ToastInfo: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Foreground(Blue).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1),

		ToastWarning: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Yellow).
			Foreground(Yellow).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1),
	}
}
