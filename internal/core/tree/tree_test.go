package tree

import (
	"testing"

	"github.com/riordanpawley/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a task with an optional parent
func makeTask(id string, parent string) domain.Task {
	return domain.Task{ID: id, Name: "Task " + id, ParentID: domain.StringPtr(parent)}
}

func countNodes(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countNodes(n.Children)
	}
	return total
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Task.ID)
	}
	return out
}

func TestBuildTree_Empty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree([]domain.Task{}))
}

func TestBuildTree_PreservesEveryTask(t *testing.T) {
	tasks := []domain.Task{
		makeTask("a", ""),
		makeTask("b", "a"),
		makeTask("c", "a"),
		makeTask("d", "c"),
		makeTask("e", ""),
	}

	roots := BuildTree(tasks)

	assert.Equal(t, []string{"a", "e"}, ids(roots))
	assert.Equal(t, len(tasks), countNodes(roots))
	assert.Equal(t, []string{"b", "c"}, ids(roots[0].Children))
	assert.Equal(t, []string{"d"}, ids(roots[0].Children[1].Children))
	assert.Equal(t, 2, roots[0].Children[1].Children[0].Depth)
}

func TestBuildTree_ChildrenKeepInputOrder(t *testing.T) {
	// Children listed before their parent still attach in input order
	tasks := []domain.Task{
		makeTask("z", "p"),
		makeTask("y", "p"),
		makeTask("p", ""),
		makeTask("x", "p"),
	}

	roots := BuildTree(tasks)

	require.Len(t, roots, 1)
	assert.Equal(t, []string{"z", "y", "x"}, ids(roots[0].Children))
}

func TestBuild_UnresolvedParentIsRoot(t *testing.T) {
	tasks := []domain.Task{
		makeTask("a", ""),
		makeTask("b", "missing"),
	}

	f := Build(tasks)

	assert.Equal(t, []string{"a", "b"}, ids(f.Roots))
	assert.Equal(t, []string{"b"}, f.Orphans)
}

func TestBuild_SelfParentIsRoot(t *testing.T) {
	f := Build([]domain.Task{makeTask("a", "a")})

	assert.Equal(t, []string{"a"}, ids(f.Roots))
	assert.Equal(t, []string{"a"}, f.Cycles)
}

func TestBuild_BreaksParentCycle(t *testing.T) {
	// a -> b -> c -> a, with d hanging off b
	tasks := []domain.Task{
		makeTask("a", "c"),
		makeTask("b", "a"),
		makeTask("c", "b"),
		makeTask("d", "b"),
		makeTask("e", ""),
	}

	f := Build(tasks)

	assert.Equal(t, len(tasks), countNodes(f.Roots), "no task may be dropped")
	assert.Equal(t, []string{"a", "e"}, ids(f.Roots))
	assert.Equal(t, []string{"a"}, f.Cycles)

	a, ok := f.Node("a")
	require.True(t, ok)
	assert.Nil(t, a.Parent)
	assert.Equal(t, 0, a.Depth)

	c, _ := f.Node("c")
	assert.Equal(t, 2, c.Depth)
}

func TestBuild_TwoIndependentCycles(t *testing.T) {
	tasks := []domain.Task{
		makeTask("a", "b"),
		makeTask("b", "a"),
		makeTask("c", "d"),
		makeTask("d", "c"),
	}

	f := Build(tasks)

	assert.Equal(t, 4, countNodes(f.Roots))
	assert.Equal(t, []string{"a", "c"}, f.Cycles)
}

func TestForest_Descendants(t *testing.T) {
	tasks := []domain.Task{
		makeTask("a", ""),
		makeTask("b", "a"),
		makeTask("c", "b"),
		makeTask("d", "a"),
		makeTask("e", ""),
	}

	f := Build(tasks)

	assert.Equal(t, []string{"b", "c", "d"}, f.Descendants("a"))
	assert.Empty(t, f.Descendants("e"))
	assert.Nil(t, f.Descendants("missing"))
}

func TestForest_Flatten(t *testing.T) {
	tasks := []domain.Task{
		makeTask("a", ""),
		makeTask("b", ""),
		makeTask("a1", "a"),
		makeTask("a1x", "a1"),
	}

	f := Build(tasks)
	flat := f.Flatten()

	assert.Equal(t, []string{"a", "a1", "a1x", "b"}, ids(flat))
	assert.Equal(t, 4, f.Len())
}

func TestForest_WalkSkipsChildren(t *testing.T) {
	f := Build([]domain.Task{makeTask("a", ""), makeTask("b", "a")})

	var visited []string
	f.Walk(func(n *Node) bool {
		visited = append(visited, n.Task.ID)
		return false
	})

	assert.Equal(t, []string{"a"}, visited)
}

func TestNode_IsLeaf(t *testing.T) {
	f := Build([]domain.Task{makeTask("a", ""), makeTask("b", "a")})
	a, _ := f.Node("a")
	b, _ := f.Node("b")

	assert.False(t, a.IsLeaf())
	assert.True(t, b.IsLeaf())
}
