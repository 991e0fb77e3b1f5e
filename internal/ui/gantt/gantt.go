// Package gantt draws a timeline.Timeline as terminal rows: a task label
// column followed by planned bars, optional baseline bars and a today marker.
package gantt

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/planboard/internal/core/timeline"
	"github.com/riordanpawley/planboard/internal/ui/styles"
)

const (
	barRune       = '█'
	baselineRune  = '▔'
	milestoneRune = '◆'
	todayRune     = '│'
)

// Options controls the chart layout
type Options struct {
	Width      int
	LabelWidth int
	// Offset is the first visible zoom column, for horizontal scrolling
	Offset int
	// Cursor highlights one row; -1 for none
	Cursor       int
	ShowBaseline bool
}

// CellWidth is the number of characters per zoom column
func CellWidth(z timeline.Zoom) int {
	if z == timeline.ZoomDay {
		return 3
	}
	return 4
}

// VisibleColumns is how many zoom columns fit next to the label column
func VisibleColumns(tl timeline.Timeline, opts Options) int {
	return max((opts.Width-opts.LabelWidth-1)/CellWidth(tl.Zoom), 1)
}

// Render draws the header rows followed by one line per task row, plus a
// baseline line under rows that have one when ShowBaseline is set.
func Render(tl timeline.Timeline, opts Options, s *styles.Styles) string {
	if len(tl.Rows) == 0 {
		return s.GanttNoDates.Render("No tasks to chart")
	}

	c := chart{tl: tl, opts: opts, s: s, cell: CellWidth(tl.Zoom)}
	c.offset = max(0, min(opts.Offset, tl.Columns-1))
	c.visible = min(VisibleColumns(tl, opts), tl.Columns-c.offset)

	lines := []string{c.coarseHeader(), c.fineHeader()}
	for i, row := range tl.Rows {
		lines = append(lines, c.row(i, row))
		if opts.ShowBaseline && row.Baseline != nil {
			lines = append(lines, c.baseline(row))
		}
	}
	return strings.Join(lines, "\n")
}

type chart struct {
	tl      timeline.Timeline
	opts    Options
	s       *styles.Styles
	cell    int
	offset  int
	visible int
}

func (c chart) width() int {
	return c.visible * c.cell
}

func (c chart) label(text string) string {
	text = ansi.Truncate(text, c.opts.LabelWidth, "…")
	return text + strings.Repeat(" ", max(c.opts.LabelWidth-lipgloss.Width(text), 0)) + " "
}

// at is the zoom-unit position under the middle of character x
func (c chart) at(x int) float64 {
	return float64(c.offset) + (float64(x)+0.5)/float64(c.cell)
}

func (c chart) todayX() int {
	if c.tl.Today == nil {
		return -1
	}
	x := int(math.Floor((*c.tl.Today - float64(c.offset)) * float64(c.cell)))
	if x < 0 || x >= c.width() {
		return -1
	}
	return x
}

func (c chart) coarseHeader() string {
	var b strings.Builder
	col := 0
	for _, cell := range c.tl.Coarse {
		from, to := col, col+cell.Span
		col = to
		from = max(from, c.offset)
		to = min(to, c.offset+c.visible)
		if from >= to {
			continue
		}
		w := (to - from) * c.cell
		text := ansi.Truncate(cell.Label, max(w-1, 0), "")
		b.WriteString(text + strings.Repeat(" ", w-lipgloss.Width(text)))
	}
	return c.label("") + c.s.GanttHeader.Render(b.String())
}

func (c chart) fineHeader() string {
	var b strings.Builder
	for i := c.offset; i < c.offset+c.visible; i++ {
		text := ansi.Truncate(c.tl.Fine[i].Label, c.cell-1, "")
		b.WriteString(text + strings.Repeat(" ", c.cell-lipgloss.Width(text)))
	}
	return c.s.GanttHeader.Render(c.label("Task")) + c.s.Muted.Render(b.String())
}

func (c chart) row(i int, row timeline.Row) string {
	name := strings.Repeat("  ", row.Depth) + row.Name
	label := c.label(name)
	if i == c.opts.Cursor {
		label = c.s.TableRowActive.Render(label)
	} else {
		label = c.s.GanttLabel.Render(label)
	}

	if row.Planned == nil {
		return label + c.s.GanttNoDates.Render(ansi.Truncate("no dates", c.width(), ""))
	}

	barStyle := c.s.BarPlanned
	if row.Critical {
		barStyle = c.s.BarCritical
	}

	milestoneX := -1
	if row.Milestone {
		milestoneX = int(math.Floor((row.Planned.Start - float64(c.offset)) * float64(c.cell)))
	}
	today := c.todayX()

	var b strings.Builder
	for x := 0; x < c.width(); x++ {
		u := c.at(x)
		switch {
		case x == milestoneX:
			b.WriteString(c.s.Milestone.Render(string(milestoneRune)))
		case !row.Milestone && u >= row.Planned.Start && u < row.Planned.End():
			b.WriteString(barStyle.Render(string(barRune)))
		case x == today:
			b.WriteString(c.s.TodayMarker.Render(string(todayRune)))
		default:
			b.WriteString(" ")
		}
	}
	return label + b.String()
}

func (c chart) baseline(row timeline.Row) string {
	today := c.todayX()
	var b strings.Builder
	for x := 0; x < c.width(); x++ {
		u := c.at(x)
		switch {
		case u >= row.Baseline.Start && u < row.Baseline.End():
			b.WriteString(c.s.BarBaseline.Render(string(baselineRune)))
		case x == today:
			b.WriteString(c.s.TodayMarker.Render(string(todayRune)))
		default:
			b.WriteString(" ")
		}
	}
	return c.label("") + b.String()
}
