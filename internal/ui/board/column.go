package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/ui/styles"
)

// renderColumn renders a kanban column with header and the task cards that
// fit, scrolled so the cursor card stays visible
func renderColumn(
	col Column,
	cursorTask int,
	isActive bool,
	selectedTasks map[string]bool,
	progress map[string]int,
	phaseData map[string]phases.TaskPhaseInfo,
	width int,
	height int,
	s *styles.Styles,
) string {
	headerStyle := s.ColumnHeader
	if isActive {
		headerStyle = s.ColumnHeaderActive
	}

	// "● To Do (3) ─────"
	dot := lipgloss.NewStyle().Foreground(styles.StatusColor(col.Status)).Render("●")
	headerText := fmt.Sprintf("%s (%d) ", col.Title(), len(col.Tasks))
	headerText = ansi.Truncate(headerText, max(width-4, 1), "…")
	if remaining := width - lipgloss.Width(headerText) - 4; remaining > 0 {
		headerText += strings.Repeat("─", remaining)
	}
	header := dot + headerStyle.Render(headerText)

	// header (1) and column border (2)
	visible := max((height-3)/cardHeight, 1)
	first := 0
	if isActive && cursorTask >= visible {
		first = cursorTask - visible + 1
	}
	last := min(first+visible, len(col.Tasks))

	var cardStrings []string
	cardWidth := max(width-4, 6)
	for i := first; i < last; i++ {
		task := col.Tasks[i]
		isCursor := isActive && i == cursorTask

		var phaseInfo *phases.TaskPhaseInfo
		if info, exists := phaseData[task.ID]; exists {
			phaseInfo = &info
		}

		cardStrings = append(cardStrings, renderCard(task, progress[task.ID], isCursor, selectedTasks[task.ID], cardWidth, phaseInfo, s))
	}

	content := s.Muted.Render("(empty)")
	if len(cardStrings) > 0 {
		content = strings.Join(cardStrings, "\n")
	}

	columnContent := s.Column.Width(max(width-2, 1)).Height(max(height-3, 1)).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, columnContent)
}
