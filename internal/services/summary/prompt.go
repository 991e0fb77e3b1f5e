package summary

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riordanpawley/planboard/internal/core/baseline"
	"github.com/riordanpawley/planboard/internal/core/performance"
	"github.com/riordanpawley/planboard/internal/core/progress"
	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/riordanpawley/planboard/internal/units"
)

// Kind selects what the model is asked to write
type Kind string

const (
	KindSummary Kind = "summary"
	KindRisks   Kind = "risks"
	KindLessons Kind = "lessons"
)

// Kinds lists every supported kind
var Kinds = []Kind{KindSummary, KindRisks, KindLessons}

// ErrUnknownKind is returned by ParseKind
var ErrUnknownKind = errors.New("unknown summary kind")

// ParseKind accepts "summary", "risks" or "lessons". Empty means summary.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindSummary, nil
	case KindSummary, KindRisks, KindLessons:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// maxHistory caps how many change log entries go into a prompt
const maxHistory = 50

const summaryInstructions = `You are a project manager writing a status summary for stakeholders.

Using the project data below, write a short executive summary covering:
1. Overall progress and whether the project is on schedule and on budget
2. Notable completed work
3. Work in progress and what is next

Keep it under 250 words. Use plain prose with short paragraphs.

`

const risksInstructions = `You are a project manager reviewing a project for delivery risk.

Using the project data below, list the most significant risks. For each risk give:
- the affected tasks
- why it is a risk (schedule slip, cost overrun, blocked dependencies, missing dates)
- a concrete mitigation

Order risks from most to least severe. Output a markdown bullet list.

`

const lessonsInstructions = `You are facilitating a project retrospective.

Using the project data and change history below, write lessons learned:
- what went well
- what went poorly, citing rescheduling or estimate changes from the history
- what to do differently next time

Output a markdown bullet list under those three headings.

`

// BuildPrompt renders instructions for kind followed by the serialized project
func BuildPrompt(p domain.Project, kind Kind, now time.Time) string {
	var b strings.Builder
	switch kind {
	case KindRisks:
		b.WriteString(risksInstructions)
	case KindLessons:
		b.WriteString(lessonsInstructions)
	default:
		b.WriteString(summaryInstructions)
	}
	b.WriteString(Serialize(p, now))
	return b.String()
}

// Serialize renders a project and its task history as plain text for a
// prompt. Tasks appear in tree order, indented by depth.
func Serialize(p domain.Project, now time.Time) string {
	var b strings.Builder
	cfg := p.Configuration
	pct := progress.Compute(p.Tasks, cfg)
	m := performance.ForProject(p, pct)

	fmt.Fprintf(&b, "Project: %s\n", p.Name)
	fmt.Fprintf(&b, "As of: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Progress: %d%%\n", pct)
	fmt.Fprintf(&b, "Hours: planned %s, actual %s\n", units.Format(m.TotalPlannedHours), units.Format(m.TotalActualHours))
	fmt.Fprintf(&b, "Budget: planned %.2f, actual cost %.2f, variance %.2f\n", m.PlannedBudget, m.ActualCost, m.CostVariance)
	fmt.Fprintf(&b, "SPI: %.2f  CPI: %.2f\n", m.SPI, m.CPI)
	if m.AtRisk {
		b.WriteString("Status: AT RISK (over budget)\n")
	}
	if p.BaselineSavedAt != nil {
		fmt.Fprintf(&b, "Baseline saved: %s\n", p.BaselineSavedAt.Format("2006-01-02"))
	}

	variances := make(map[string]baseline.Variance)
	for _, v := range baseline.Variances(p.Tasks) {
		variances[v.TaskID] = v
	}

	b.WriteString("\nTasks:\n")
	if len(p.Tasks) == 0 {
		b.WriteString("(none)\n")
	}
	rollup := progress.Rollup(p.Tasks, cfg)
	for _, n := range tree.Build(p.Tasks).Flatten() {
		writeTask(&b, n, cfg, rollup[n.Task.ID], variances)
	}

	history := collectHistory(p.Tasks)
	if len(history) > 0 {
		fmt.Fprintf(&b, "\nChange history (most recent first, %d of %d):\n", min(len(history), maxHistory), len(history))
		names := make(map[string]string, len(p.Tasks))
		for _, t := range p.Tasks {
			names[t.ID] = t.Name
		}
		for _, c := range history[:min(len(history), maxHistory)] {
			fmt.Fprintf(&b, "- %s %s changed %s on %q: %q -> %q",
				c.Timestamp.Format("2006-01-02"), c.Actor, c.Field, names[c.TaskID], c.OldValue, c.NewValue)
			if c.Justification != "" {
				fmt.Fprintf(&b, " (%s)", c.Justification)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeTask(b *strings.Builder, n *tree.Node, cfg domain.Configuration, agg progress.Node, variances map[string]baseline.Variance) {
	t := n.Task
	indent := strings.Repeat("  ", n.Depth)

	status := t.Status
	if def, ok := cfg.Status(t.Status); ok {
		status = def.Name
	}
	fmt.Fprintf(b, "%s- %s [%s, %s priority", indent, t.Name, status, t.Priority)
	if t.Assignee != "" {
		fmt.Fprintf(b, ", %s", t.Assignee)
	}
	if t.IsMilestone {
		b.WriteString(", milestone")
	}
	if t.IsCritical {
		b.WriteString(", critical")
	}
	b.WriteString("]\n")

	detail := indent + "  "
	fmt.Fprintf(b, "%splanned %s to %s", detail, dateText(t.PlannedStartDate), dateText(t.PlannedEndDate))
	if !t.ActualStartDate.IsZero() || !t.ActualEndDate.IsZero() {
		fmt.Fprintf(b, ", actual %s to %s", dateText(t.ActualStartDate), dateText(t.ActualEndDate))
	}
	b.WriteString("\n")

	if n.IsLeaf() {
		fmt.Fprintf(b, "%seffort planned %s, actual %s; SPI %s, CPI %s\n", detail,
			units.Format(t.PlannedHours), units.Format(t.ActualHours),
			performance.TaskSPI(t, cfg), performance.TaskCPI(t, cfg))
	} else {
		fmt.Fprintf(b, "%ssubtree progress %d%%\n", detail, agg.Percent())
	}

	if v, ok := variances[t.ID]; ok && (v.StartDays != 0 || v.EndDays != 0) {
		fmt.Fprintf(b, "%sslip vs baseline: start %+dd, end %+dd\n", detail, v.StartDays, v.EndDays)
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(b, "%sdepends on: %s\n", detail, strings.Join(t.Dependencies, ", "))
	}
}

func dateText(d domain.Date) string {
	switch {
	case d.Valid():
		return d.Time().Format("2006-01-02")
	case d.IsZero():
		return "unset"
	default:
		return "invalid (" + d.String() + ")"
	}
}

// collectHistory merges every task's change log, newest first
func collectHistory(tasks []domain.Task) []domain.ChangeLog {
	var out []domain.ChangeLog
	for _, t := range tasks {
		out = append(out, t.ChangeHistory...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
