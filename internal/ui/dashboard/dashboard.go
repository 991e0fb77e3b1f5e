// Package dashboard renders the project headline figures as metric cards.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/planboard/internal/core/baseline"
	"github.com/riordanpawley/planboard/internal/core/performance"
	"github.com/riordanpawley/planboard/internal/core/phases"
	"github.com/riordanpawley/planboard/internal/core/progress"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/ui/styles"
	"github.com/riordanpawley/planboard/internal/units"
)

const (
	cardWidth   = 26
	progressBar = 20
)

// StatusCount is the number of tasks in one configured status
type StatusCount struct {
	Status domain.StatusDefinition
	Count  int
}

// Snapshot is everything the dashboard shows, computed once per project load
type Snapshot struct {
	Name            string
	Tasks           int
	Metrics         performance.ProjectMetrics
	Statuses        []StatusCount
	BaselineSavedAt *time.Time
	// Slipped counts baselined tasks whose planned end moved later
	Slipped int
	MaxSlip int
	Ready   int
	Blocked int
	Cycle   []string
}

// Summarize computes the dashboard figures for p
func Summarize(p domain.Project) Snapshot {
	pct := progress.Compute(p.Tasks, p.Configuration)
	snap := Snapshot{
		Name:            p.Name,
		Tasks:           len(p.Tasks),
		Metrics:         performance.ForProject(p, pct),
		BaselineSavedAt: p.BaselineSavedAt,
	}

	counts := make(map[string]int, len(p.Configuration.Statuses))
	for _, t := range p.Tasks {
		counts[t.Status]++
	}
	for _, def := range p.Configuration.Statuses {
		snap.Statuses = append(snap.Statuses, StatusCount{Status: def, Count: counts[def.ID]})
	}

	for _, v := range baseline.Variances(p.Tasks) {
		if v.EndDays > 0 {
			snap.Slipped++
			snap.MaxSlip = max(snap.MaxSlip, v.EndDays)
		}
	}

	// open tasks waiting on at least one open dependency
	for _, t := range p.Tasks {
		if p.Configuration.IsCompleted(t.Status) {
			continue
		}
		if waiting(p, t) {
			snap.Blocked++
		} else {
			snap.Ready++
		}
	}
	snap.Cycle = phases.Compute(p.Tasks).Cycle
	return snap
}

func waiting(p domain.Project, t domain.Task) bool {
	for _, id := range t.Dependencies {
		dep, ok := p.TaskByID(id)
		if ok && id != t.ID && !p.Configuration.IsCompleted(dep.Status) {
			return true
		}
	}
	return false
}

// Render lays the cards out in as many rows as width requires
func Render(snap Snapshot, width int, s *styles.Styles) string {
	cards := []string{
		progressCard(snap, s),
		scheduleCard(snap, s),
		costCard(snap, s),
		hoursCard(snap, s),
		statusCard(snap, s),
		baselineCard(snap, s),
		dependencyCard(snap, s),
	}

	// border (2) and padding (4) sit outside cardWidth
	perRow := max(width/(cardWidth+6), 1)
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:min(i+perRow, len(cards))]...))
	}

	title := s.Title.Render(fmt.Sprintf("%s · %d tasks", snap.Name, snap.Tasks))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
}

func card(s *styles.Styles, risk bool, label string, lines ...string) string {
	style := s.Metric
	if risk {
		style = s.MetricRisk
	}
	body := append([]string{s.MetricLabel.Render(label)}, lines...)
	return style.Width(cardWidth).Render(strings.Join(body, "\n"))
}

// Bar draws a percentage as a fixed-width bar
func Bar(pct, width int) string {
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func progressCard(snap Snapshot, s *styles.Styles) string {
	return card(s, false, "Progress",
		s.MetricValue.Render(fmt.Sprintf("%d%%", snap.Metrics.Progress)),
		s.MetricGood.Render(Bar(snap.Metrics.Progress, progressBar)))
}

// indexStyle colors an index red below 1
func indexStyle(v float64, s *styles.Styles) lipgloss.Style {
	if v < 1 {
		return s.MetricBad
	}
	return s.MetricGood
}

func scheduleCard(snap Snapshot, s *styles.Styles) string {
	m := snap.Metrics
	return card(s, false, "Schedule (SPI)",
		indexStyle(m.SPI, s).Render(fmt.Sprintf("%.2f", m.SPI)),
		s.Muted.Render("earned "+units.Format(m.EarnedValue)))
}

func costCard(snap Snapshot, s *styles.Styles) string {
	m := snap.Metrics
	variance := s.MetricGood.Render(fmt.Sprintf("CV %+.0f", m.CostVariance))
	if m.AtRisk {
		variance = s.MetricBad.Render(fmt.Sprintf("CV %+.0f  AT RISK", m.CostVariance))
	}
	return card(s, m.AtRisk, "Cost (CPI)",
		indexStyle(m.CPI, s).Render(fmt.Sprintf("%.2f", m.CPI)),
		s.MetricValue.Render(fmt.Sprintf("%.0f / %.0f", m.ActualCost, m.PlannedBudget)),
		variance)
}

func hoursCard(snap Snapshot, s *styles.Styles) string {
	m := snap.Metrics
	return card(s, false, "Effort",
		s.MetricValue.Render("planned "+units.Format(m.TotalPlannedHours)),
		s.MetricValue.Render("actual  "+units.Format(m.TotalActualHours)))
}

func statusCard(snap Snapshot, s *styles.Styles) string {
	var lines []string
	for _, sc := range snap.Statuses {
		name := sc.Status.Name
		if name == "" {
			name = sc.Status.ID
		}
		lines = append(lines, s.StatusBadge(sc.Status).Render(fmt.Sprintf("%-14s %3d", name, sc.Count)))
	}
	if len(lines) == 0 {
		lines = append(lines, s.Muted.Render("no statuses"))
	}
	return card(s, false, "Status", lines...)
}

func baselineCard(snap Snapshot, s *styles.Styles) string {
	if snap.BaselineSavedAt == nil {
		return card(s, false, "Baseline", s.Muted.Render("not saved"), s.Muted.Render("press b to save"))
	}
	slip := s.MetricGood.Render("on baseline")
	if snap.Slipped > 0 {
		slip = s.MetricBad.Render(fmt.Sprintf("%d late, worst +%dd", snap.Slipped, snap.MaxSlip))
	}
	return card(s, false, "Baseline",
		s.MetricValue.Render(snap.BaselineSavedAt.Format("2006-01-02 15:04")),
		slip)
}

func dependencyCard(snap Snapshot, s *styles.Styles) string {
	lines := []string{
		s.MetricGood.Render(fmt.Sprintf("%d ready", snap.Ready)),
		s.MetricValue.Render(fmt.Sprintf("%d waiting", snap.Blocked)),
	}
	if len(snap.Cycle) > 0 {
		lines = append(lines, s.MetricBad.Render(fmt.Sprintf("cycle: %s", strings.Join(snap.Cycle, ", "))))
	}
	return card(s, len(snap.Cycle) > 0, "Dependencies", lines...)
}
