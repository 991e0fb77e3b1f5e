package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/ui/styles"
)

// cardHeight is the rendered height of one card including its border
const cardHeight = 4

// renderCard renders a task card
func renderCard(task domain.Task, progress int, isCursor bool, isSelected bool, width int, phaseInfo *phases.TaskPhaseInfo, s *styles.Styles) string {
	cardStyle := s.Card
	if isSelected {
		cardStyle = s.CardSelected
	} else if isCursor {
		cardStyle = s.CardActive
	}
	// lipgloss widths exclude the border (2); padding (2) is inside
	cardStyle = cardStyle.Width(max(width-2, 1))
	inner := max(width-4, 1)

	cursor := ""
	if isCursor {
		cursor = "▶ "
	}
	titleLine := s.TaskName.Render(ansi.Truncate(cursor+task.Name, inner, "…"))

	badges := []string{s.PriorityBadge(task.Priority).Render(task.Priority.String())}
	if task.IsMilestone {
		badges = append(badges, s.Milestone.Render("◆"))
	}
	if task.IsCritical {
		badges = append(badges, s.BarCritical.Render("!"))
	}
	meta := []string{fmt.Sprintf("%d%%", progress)}
	if task.Assignee != "" {
		meta = append(meta, "@"+task.Assignee)
	}
	if phaseInfo != nil && len(phaseInfo.BlockedBy) > 0 {
		meta = append(meta, fmt.Sprintf("⧗%d", len(phaseInfo.BlockedBy)))
	}
	badgeLine := strings.Join(badges, " ") + " " + s.Muted.Render(strings.Join(meta, " "))
	badgeLine = ansi.Truncate(badgeLine, inner, "…")

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, badgeLine)

	return cardStyle.Render(content)
}

// RenderCard is the exported version for testing
func RenderCard(task domain.Task, progress int, isCursor bool, isSelected bool, width int, s *styles.Styles) string {
	return renderCard(task, progress, isCursor, isSelected, width, nil, s)
}
