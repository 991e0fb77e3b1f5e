// Package table renders the task list: the task tree indented by depth, or
// a flat list when a sort is active, with rolled-up progress per row.
package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/planboard/internal/core/performance"
	"github.com/riordanpawley/planboard/internal/core/progress"
	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/ui/styles"
	"github.com/riordanpawley/planboard/internal/units"
)

// Row is one rendered task line
type Row struct {
	Task     domain.Task
	Depth    int
	Progress int
	SPI      performance.Index
	CPI      performance.Index
}

// Build lists the tasks that pass filter. Without a sort field the rows
// follow the task tree depth-first; with one they are flat and sorted.
func Build(p domain.Project, filter *domain.Filter, sort *domain.Sort) []Row {
	rollup := progress.Rollup(p.Tasks, p.Configuration)
	row := func(t domain.Task, depth int) Row {
		return Row{
			Task:     t,
			Depth:    depth,
			Progress: rollup[t.ID].Percent(),
			SPI:      performance.TaskSPI(t, p.Configuration),
			CPI:      performance.TaskCPI(t, p.Configuration),
		}
	}

	matches := func(t domain.Task) bool {
		return filter == nil || filter.Matches(t)
	}

	rows := []Row{}
	if sort != nil && sort.Field != "" {
		for _, t := range sort.Apply(p.Tasks) {
			if matches(t) {
				rows = append(rows, row(t, 0))
			}
		}
		return rows
	}

	for _, n := range tree.Build(p.Tasks).Flatten() {
		if matches(n.Task) {
			rows = append(rows, row(n.Task, n.Depth))
		}
	}
	return rows
}

type column struct {
	title string
	width int
}

var fixedColumns = []column{
	{"Status", 12},
	{"Pri", 6},
	{"Assignee", 10},
	{"Start", 10},
	{"End", 10},
	{"Effort", 7},
	{"Done", 5},
	{"SPI", 5},
	{"CPI", 5},
}

// minNameWidth keeps the name column readable on narrow terminals
const minNameWidth = 16

func cell(text string, width int) string {
	text = ansi.Truncate(text, width, "…")
	return text + strings.Repeat(" ", max(width-lipgloss.Width(text), 0))
}

func dateCell(d domain.Date) string {
	switch {
	case d.Valid():
		return d.Time().Format("2006-01-02")
	case d.IsZero():
		return "-"
	default:
		return "invalid"
	}
}

// Render draws a header and the rows from offset that fit in height,
// highlighting the cursor row
func Render(rows []Row, cfg domain.Configuration, cursor, offset, width, height int, s *styles.Styles) string {
	fixed := 0
	for _, c := range fixedColumns {
		fixed += c.width + 1
	}
	nameWidth := max(width-fixed, minNameWidth)

	header := []string{cell("Task", nameWidth)}
	for _, c := range fixedColumns {
		header = append(header, cell(c.title, c.width))
	}
	lines := []string{s.TableHeader.Render(strings.Join(header, " "))}

	if len(rows) == 0 {
		return strings.Join(append(lines, s.Muted.Render("No matching tasks")), "\n")
	}

	visible := max(height-1, 1)
	offset = max(0, min(offset, len(rows)-1))
	for i := offset; i < min(offset+visible, len(rows)); i++ {
		r := rows[i]
		t := r.Task

		name := strings.Repeat("  ", r.Depth) + t.Name
		if t.IsMilestone {
			name += " ◆"
		}
		if t.IsCritical {
			name += " !"
		}
		status := t.Status
		if def, ok := cfg.Status(t.Status); ok {
			status = def.Name
		}

		cells := []string{
			cell(name, nameWidth),
			cell(status, 12),
			cell(t.Priority.String(), 6),
			cell(t.Assignee, 10),
			cell(dateCell(t.PlannedStartDate), 10),
			cell(dateCell(t.PlannedEndDate), 10),
			cell(units.Format(t.PlannedHours), 7),
			cell(fmt.Sprintf("%d%%", r.Progress), 5),
			cell(r.SPI.String(), 5),
			cell(r.CPI.String(), 5),
		}
		line := strings.Join(cells, " ")
		if i == cursor {
			lines = append(lines, s.TableRowActive.Render(line))
		} else {
			lines = append(lines, s.TableRow.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// ScrollOffset returns the offset that keeps cursor inside a window of
// height-1 rows, moving the current offset as little as possible
func ScrollOffset(cursor, offset, height int) int {
	visible := max(height-1, 1)
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visible {
		return cursor - visible + 1
	}
	return offset
}
