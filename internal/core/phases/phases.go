// Package phases provides dependency phase computation for tasks.
//
// Computes phases using Kahn's algorithm (topological sort) to determine
// which tasks can be worked in parallel (same phase) vs. which are blocked.
//
// Phase 0 = tasks with no blocking dependencies (ready now)
// Phase N = tasks only blocked by Phase 0..N-1 tasks
//
// Dependency cycles are not validated anywhere else, so they surface here:
// tasks still blocked when no task is ready are placed in the current phase
// and reported in Result.Cycle instead of looping forever.
package phases

import (
	"sort"

	"github.com/riordanpawley/planboard/internal/domain"
)

// TaskPhaseInfo contains phase information for a single task
type TaskPhaseInfo struct {
	// Phase number (0 = ready, 1+ = blocked by earlier phases)
	Phase int `json:"phase"`
	// IDs of tasks blocking this one (empty for Phase 0)
	BlockedBy []string `json:"blockedBy"`
}

// Result contains the result of phase computation for a task set
type Result struct {
	// Map from task ID to phase info
	Phases map[string]TaskPhaseInfo `json:"phases"`
	// Maximum phase number (for UI iteration)
	MaxPhase int `json:"maxPhase"`
	// Count of tasks per phase
	PhaseCounts map[int]int `json:"phaseCounts"`
	// Tasks left on or behind a dependency cycle, sorted
	Cycle []string `json:"cycle,omitempty"`
}

// Compute assigns dependency phases to every task.
//
// Only dependencies that resolve to a task in the set count; unknown ids and
// self-references are ignored. Completed tasks still take part, so a done
// blocker moves its dependents one phase later exactly like an open one.
func Compute(tasks []domain.Task) Result {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	// blockers[taskId] = resolvable, de-duplicated dependency ids
	blockers := make(map[string][]string, len(ids))
	for _, t := range tasks {
		if _, done := blockers[t.ID]; done {
			continue
		}
		seen := make(map[string]bool, len(t.Dependencies))
		deps := []string{}
		for _, dep := range t.Dependencies {
			if dep == t.ID || !ids[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
		blockers[t.ID] = deps
	}

	// Kahn's algorithm: compute phases by removing nodes with no blockers
	phases := make(map[string]TaskPhaseInfo, len(ids))
	remaining := make(map[string]bool, len(ids))
	for id := range ids {
		remaining[id] = true
	}

	var cycle []string
	currentPhase := 0

	for len(remaining) > 0 {
		var readyThisPhase []string

		for taskID := range remaining {
			unresolved := false
			for _, blocker := range blockers[taskID] {
				if remaining[blocker] {
					unresolved = true
					break
				}
			}
			if !unresolved {
				readyThisPhase = append(readyThisPhase, taskID)
			}
		}

		// If no tasks are ready but we still have remaining, there's a cycle
		// Assign all remaining to current phase to avoid infinite loop
		if len(readyThisPhase) == 0 {
			for taskID := range remaining {
				blockedBy := []string{}
				for _, b := range blockers[taskID] {
					if remaining[b] {
						blockedBy = append(blockedBy, b)
					}
				}
				phases[taskID] = TaskPhaseInfo{
					Phase:     currentPhase,
					BlockedBy: blockedBy,
				}
				cycle = append(cycle, taskID)
			}
			break
		}

		for _, taskID := range readyThisPhase {
			phases[taskID] = TaskPhaseInfo{
				Phase:     currentPhase,
				BlockedBy: blockers[taskID],
			}
		}
		for _, taskID := range readyThisPhase {
			delete(remaining, taskID)
		}

		currentPhase++
	}

	phaseCounts := make(map[int]int)
	maxPhase := 0
	for _, info := range phases {
		phaseCounts[info.Phase]++
		if info.Phase > maxPhase {
			maxPhase = info.Phase
		}
	}

	sort.Strings(cycle)

	return Result{
		Phases:      phases,
		MaxPhase:    maxPhase,
		PhaseCounts: phaseCounts,
		Cycle:       cycle,
	}
}

// PhaseGroup is one phase and the tasks in it
type PhaseGroup struct {
	Phase   int      `json:"phase"`
	TaskIDs []string `json:"taskIds"`
}

// GetTasksByPhase groups tasks by phase, sorted by phase number then id
func GetTasksByPhase(phases map[string]TaskPhaseInfo) []PhaseGroup {
	byPhase := make(map[int][]string)
	maxPhase := -1
	for taskID, info := range phases {
		byPhase[info.Phase] = append(byPhase[info.Phase], taskID)
		if info.Phase > maxPhase {
			maxPhase = info.Phase
		}
	}

	var result []PhaseGroup
	for phase := 0; phase <= maxPhase; phase++ {
		if taskIDs, exists := byPhase[phase]; exists {
			sort.Strings(taskIDs)
			result = append(result, PhaseGroup{Phase: phase, TaskIDs: taskIDs})
		}
	}
	return result
}

// IsBlocked returns true if a task is blocked by an earlier phase
func (r Result) IsBlocked(taskID string) bool {
	info, exists := r.Phases[taskID]
	return exists && info.Phase > 0
}

// HasCycle reports whether any dependency cycle was detected
func (r Result) HasCycle() bool {
	return len(r.Cycle) > 0
}

// BlockerNames returns names of tasks blocking the given task, falling back
// to the id when a blocker has no name
func (r Result) BlockerNames(taskID string, tasks []domain.Task) []string {
	info, exists := r.Phases[taskID]
	if !exists || len(info.BlockedBy) == 0 {
		return []string{}
	}

	byID := make(map[string]string, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t.Name
	}

	names := make([]string, 0, len(info.BlockedBy))
	for _, blockerID := range info.BlockedBy {
		if name := byID[blockerID]; name != "" {
			names = append(names, name)
		} else {
			names = append(names, blockerID)
		}
	}
	return names
}
