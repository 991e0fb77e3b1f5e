// Package progress computes the effort-weighted completion rollup.
//
// Only leaf tasks carry raw weight: a leaf scores 100 when its status is the
// configured completed status, 0 otherwise, and weighs max(plannedHours, 1).
// A task with children ignores its own planned hours and sums its leaves.
// The rollup is weighted by effort, not by task count, so one large finished
// leaf outweighs several small unfinished ones.
package progress

import (
	"math"

	"github.com/riordanpawley/planboard/internal/core/tree"
	"github.com/riordanpawley/planboard/internal/domain"
)

// minLeafWeight keeps zero-hour leaves from vanishing from the rollup
const minLeafWeight = 1.0

// Node is the aggregated progress of one subtree
type Node struct {
	// Weighted is Σ(progress × weight) over the subtree's leaves
	Weighted float64
	// Weight is Σ weight over the subtree's leaves
	Weight float64
}

// Percent returns the subtree completion rounded to an integer in [0,100]
func (n Node) Percent() int {
	return percent(n.Weighted, n.Weight)
}

// Compute returns the project completion percentage
func Compute(tasks []domain.Task, cfg domain.Configuration) int {
	f := tree.Build(tasks)
	var total Node
	for _, r := range f.Roots {
		n := aggregate(r, cfg, nil)
		total.Weighted += n.Weighted
		total.Weight += n.Weight
	}
	return total.Percent()
}

// Rollup returns the aggregated progress of every task's subtree, keyed by id
func Rollup(tasks []domain.Task, cfg domain.Configuration) map[string]Node {
	f := tree.Build(tasks)
	out := make(map[string]Node, f.Len())
	for _, r := range f.Roots {
		aggregate(r, cfg, out)
	}
	return out
}

// aggregate walks bottom-up. The forest is acyclic by construction, so the
// recursion depth is bounded by the tree height.
func aggregate(n *tree.Node, cfg domain.Configuration, out map[string]Node) Node {
	var res Node
	if n.IsLeaf() {
		w := leafWeight(n.Task)
		res = Node{Weighted: leafProgress(n.Task, cfg) * w, Weight: w}
	} else {
		for _, c := range n.Children {
			cn := aggregate(c, cfg, out)
			res.Weighted += cn.Weighted
			res.Weight += cn.Weight
		}
	}
	if out != nil {
		if _, seen := out[n.Task.ID]; !seen {
			out[n.Task.ID] = res
		}
	}
	return res
}

func leafProgress(t domain.Task, cfg domain.Configuration) float64 {
	if cfg.IsCompleted(t.Status) {
		return 100
	}
	return 0
}

func leafWeight(t domain.Task) float64 {
	h := t.PlannedHours
	if math.IsNaN(h) || math.IsInf(h, 0) || h < minLeafWeight {
		return minLeafWeight
	}
	return h
}

func percent(weighted, weight float64) int {
	if weight <= 0 {
		return 0
	}
	p := math.Round(weighted / weight)
	return int(math.Max(0, math.Min(100, p)))
}
