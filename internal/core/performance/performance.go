// Package performance derives schedule and cost performance indices.
package performance

import (
	"fmt"
	"math"

	"github.com/riordanpawley/planboard/internal/domain"
)

// Index is a ratio that may be undefined for a task
type Index struct {
	Value   float64
	Defined bool
}

func defined(v float64) Index {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Index{}
	}
	return Index{Value: v, Defined: true}
}

// String renders the index with two decimals, or "N/A"
func (i Index) String() string {
	if !i.Defined {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", i.Value)
}

// MarshalText renders the same form as String so JSON output carries "N/A"
func (i Index) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// TaskSPI is planned duration over actual duration for a completed task
// with both actual dates recorded. A zero actual duration scores 1.00.
func TaskSPI(t domain.Task, cfg domain.Configuration) Index {
	if !cfg.IsCompleted(t.Status) {
		return Index{}
	}
	if !t.ActualStartDate.Valid() || !t.ActualEndDate.Valid() {
		return Index{}
	}
	actual := t.ActualEndDate.Time().Sub(t.ActualStartDate.Time())
	if actual < 0 {
		return Index{}
	}
	if actual == 0 {
		return Index{Value: 1, Defined: true}
	}
	if !t.PlannedStartDate.Valid() || !t.PlannedEndDate.Valid() {
		return Index{}
	}
	planned := t.PlannedEndDate.Time().Sub(t.PlannedStartDate.Time())
	return defined(planned.Hours() / actual.Hours())
}

// TaskCPI is planned hours over actual hours. A completed task with no
// actual hours scores 1.00.
func TaskCPI(t domain.Task, cfg domain.Configuration) Index {
	if t.ActualHours > 0 {
		return defined(t.PlannedHours / t.ActualHours)
	}
	if cfg.IsCompleted(t.Status) && t.ActualHours == 0 {
		return Index{Value: 1, Defined: true}
	}
	return Index{}
}

// ProjectMetrics are the earned-value figures for a whole project
type ProjectMetrics struct {
	Progress          int     `json:"progress"`
	TotalPlannedHours float64 `json:"totalPlannedHours"`
	TotalActualHours  float64 `json:"totalActualHours"`
	EarnedValue       float64 `json:"earnedValue"`
	SPI               float64 `json:"spi"`
	CPI               float64 `json:"cpi"`
	PlannedBudget     float64 `json:"plannedBudget"`
	ActualCost        float64 `json:"actualCost"`
	CostVariance      float64 `json:"costVariance"`
	AtRisk            bool    `json:"atRisk"`
}

// ForProject computes project-level indices given the overall progress.
// Both indices default to 1 when a denominator is zero.
func ForProject(p domain.Project, progress int) ProjectMetrics {
	m := ProjectMetrics{
		Progress:      progress,
		PlannedBudget: p.PlannedBudget,
		ActualCost:    p.ActualCost(),
		SPI:           1,
		CPI:           1,
	}
	for _, t := range p.Tasks {
		m.TotalPlannedHours += finite(t.PlannedHours)
		m.TotalActualHours += finite(t.ActualHours)
	}
	m.EarnedValue = float64(progress) / 100 * m.TotalPlannedHours

	if m.EarnedValue > 0 && m.TotalPlannedHours > 0 {
		m.SPI = m.EarnedValue / m.TotalPlannedHours
	}
	if m.EarnedValue > 0 && m.TotalActualHours > 0 {
		m.CPI = m.EarnedValue / m.TotalActualHours
	}

	m.CostVariance = m.PlannedBudget - m.ActualCost
	m.AtRisk = m.CostVariance < 0
	return m
}

// TaskIndices pairs a task with its indices
type TaskIndices struct {
	TaskID string `json:"taskId"`
	SPI    Index  `json:"spi"`
	CPI    Index  `json:"cpi"`
}

// ForTasks computes SPI/CPI for every task in input order
func ForTasks(tasks []domain.Task, cfg domain.Configuration) []TaskIndices {
	out := make([]TaskIndices, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskIndices{
			TaskID: t.ID,
			SPI:    TaskSPI(t, cfg),
			CPI:    TaskCPI(t, cfg),
		})
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
