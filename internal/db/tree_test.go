package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForestEmpty(t *testing.T) {
	assert.Empty(t, BuildForest(nil))
}

func TestBuildForestNesting(t *testing.T) {
	todos := []Todo{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Milk", ParentID: ptr(int64(1))},
		{ID: 3, Name: "Eggs", ParentID: ptr(int64(1))},
		{ID: 4, Name: "Chores"},
		{ID: 5, Name: "Organic milk", ParentID: ptr(int64(2))},
	}

	forest := BuildForest(todos)
	require.Len(t, forest, 2)

	groceries := forest[0]
	assert.Equal(t, "Groceries", groceries.Name)
	require.Len(t, groceries.Children, 2)
	assert.Equal(t, "Milk", groceries.Children[0].Name)
	assert.Equal(t, "Eggs", groceries.Children[1].Name)
	require.Len(t, groceries.Children[0].Children, 1)
	assert.Equal(t, "Organic milk", groceries.Children[0].Children[0].Name)

	assert.Equal(t, "Chores", forest[1].Name)
	assert.Empty(t, forest[1].Children)
}

// Walking the forest depth-first must visit every parent before any of its
// children, and every row exactly once.
func TestBuildForestParentAlwaysFirst(t *testing.T) {
	todos := []Todo{
		{ID: 1},
		{ID: 2, ParentID: ptr(int64(1))},
		{ID: 3, ParentID: ptr(int64(2))},
		{ID: 4},
		{ID: 5, ParentID: ptr(int64(4))},
	}

	seen := map[int64]bool{}
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.ParentID != nil {
				assert.True(t, seen[*n.ParentID], "todo %d rendered before parent %d", n.ID, *n.ParentID)
			}
			assert.False(t, seen[n.ID], "todo %d placed twice", n.ID)
			seen[n.ID] = true
			walk(n.Children)
		}
	}
	walk(BuildForest(todos))
	assert.Len(t, seen, len(todos))
}

func TestBuildForestMalformedRows(t *testing.T) {
	todos := []Todo{
		{ID: 1, Name: "orphan", ParentID: ptr(int64(99))},
		{ID: 2, Name: "self", ParentID: ptr(int64(2))},
	}

	forest := BuildForest(todos)
	require.Len(t, forest, 2, "unresolvable parents surface as roots")
	assert.Equal(t, "orphan", forest[0].Name)
	assert.Equal(t, "self", forest[1].Name)
}
