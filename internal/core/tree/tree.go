// Package tree builds the parent/child forest from a flat task list.
//
// Tasks whose parent is absent or unknown become roots. Parent cycles
// (including a task naming itself as parent) are broken by promoting the
// first task of each cycle, in input order, to a root, so every input task
// appears in the forest exactly once.
package tree

import (
	"github.com/riordanpawley/planboard/internal/domain"
)

// Node is a task with its ordered sub-tasks
type Node struct {
	Task     domain.Task
	Children []*Node
	Parent   *Node
	Depth    int
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Forest is the derived tree view of a project's tasks
type Forest struct {
	Roots []*Node

	// Orphans lists tasks whose parentId did not resolve
	Orphans []string
	// Cycles lists tasks promoted to root to break a parent cycle
	Cycles []string

	index map[string]*Node
	order []*Node
}

// BuildTree returns the root nodes of the task forest
func BuildTree(tasks []domain.Task) []*Node {
	return Build(tasks).Roots
}

// Build constructs the forest in O(n) using a single id index.
// Duplicate ids resolve to their first occurrence.
func Build(tasks []domain.Task) *Forest {
	f := &Forest{
		index: make(map[string]*Node, len(tasks)),
		order: make([]*Node, 0, len(tasks)),
	}

	for _, t := range tasks {
		n := &Node{Task: t}
		f.order = append(f.order, n)
		if _, dup := f.index[t.ID]; !dup {
			f.index[t.ID] = n
		}
	}

	// Attach children in input order
	for _, n := range f.order {
		pid := n.Task.Parent()
		if pid == "" {
			continue
		}
		parent, ok := f.index[pid]
		if !ok {
			f.Orphans = append(f.Orphans, n.Task.ID)
			continue
		}
		if parent == n {
			f.Cycles = append(f.Cycles, n.Task.ID)
			continue
		}
		n.Parent = parent
		parent.Children = append(parent.Children, n)
	}

	// Mark everything reachable from a natural root
	reached := make(map[*Node]bool, len(f.order))
	for _, n := range f.order {
		if n.Parent == nil {
			mark(n, 0, reached)
		}
	}

	// Whatever is left hangs off a cycle: promote the first unreached node
	// of each cycle and mark its subtree.
	for _, n := range f.order {
		if reached[n] {
			continue
		}
		detach(n)
		f.Cycles = append(f.Cycles, n.Task.ID)
		mark(n, 0, reached)
	}

	for _, n := range f.order {
		if n.Parent == nil {
			f.Roots = append(f.Roots, n)
		}
	}

	return f
}

// mark sets depth and reachability for a subtree. Reached nodes are never
// revisited, which bounds the walk even if the links were malformed.
func mark(n *Node, depth int, reached map[*Node]bool) {
	stack := []*Node{n}
	n.Depth = depth
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[cur] {
			continue
		}
		reached[cur] = true
		for _, c := range cur.Children {
			if reached[c] {
				continue
			}
			c.Depth = cur.Depth + 1
			stack = append(stack, c)
		}
	}
}

// detach removes n from its parent's child list
func detach(n *Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Node returns the node for a task id
func (f *Forest) Node(id string) (*Node, bool) {
	n, ok := f.index[id]
	return n, ok
}

// Len is the number of tasks in the forest
func (f *Forest) Len() int {
	return len(f.order)
}

// Descendants returns the ids of all transitive children of id, in
// depth-first order. The task itself is not included.
func (f *Forest) Descendants(id string) []string {
	n, ok := f.index[id]
	if !ok {
		return nil
	}
	var out []string
	seen := map[*Node]bool{n: true}
	var visit func(*Node)
	visit = func(cur *Node) {
		for _, c := range cur.Children {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c.Task.ID)
			visit(c)
		}
	}
	visit(n)
	return out
}

// Walk visits every node depth-first, roots in input order.
// Returning false from fn skips the node's children.
func (f *Forest) Walk(fn func(n *Node) bool) {
	seen := make(map[*Node]bool, len(f.order))
	var visit func(*Node)
	visit = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range f.Roots {
		visit(r)
	}
}

// Flatten returns the nodes in depth-first display order
func (f *Forest) Flatten() []*Node {
	out := make([]*Node, 0, len(f.order))
	f.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}
