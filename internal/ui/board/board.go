// Package board renders the status kanban: one column per configured status.
package board

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/ui/styles"
)

// Render renders the entire kanban board
func Render(
	columns []Column,
	cursor Cursor,
	selectedTasks map[string]bool,
	progress map[string]int,
	phaseData map[string]phases.TaskPhaseInfo,
	s *styles.Styles,
	width int,
	height int,
) string {
	if len(columns) == 0 {
		return ""
	}

	columnWidth := width / len(columns)

	var columnStrings []string
	for i, col := range columns {
		isActive := i == cursor.Column
		cursorTask := 0
		if isActive {
			cursorTask = cursor.Task
		}

		columnStr := renderColumn(col, cursorTask, isActive, selectedTasks, progress, phaseData, columnWidth, height, s)

		sized := lipgloss.NewStyle().Width(columnWidth).MaxWidth(columnWidth).Height(height).MaxHeight(height).Render(columnStr)
		columnStrings = append(columnStrings, sized)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnStrings...)
}
