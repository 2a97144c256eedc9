package dag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds a graph with the given edges, adding nodes as needed.
func chain(t *testing.T, edges ...[2]string) *Graph {
	t.Helper()
	g := New()
	for _, e := range edges {
		g.AddNode(e[0])
		g.AddNode(e[1])
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // idempotent
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		require.NoError(t, g.AddEdge("a", "b")) // b depends on a

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Equal(t, nodeA, nodeB.deps["a"])
		assert.True(t, g.HasEdge("a", "b"))
		assert.False(t, g.HasEdge("b", "a"))
	})

	t.Run("missing nodes", func(t *testing.T) {
		g := New()
		g.AddNode("a")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")
		assert.ErrorIs(t, err, ErrNodeNotFound)

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")
	})

	t.Run("self loop is accepted and swept", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		require.NoError(t, g.AddEdge("a", "a"))
		assert.True(t, g.HasEdge("a", "a"))
		assert.Equal(t, []string{"a"}, g.TopLevel())

		assert.Equal(t, 1, g.RemoveSelfLoops())
		assert.False(t, g.HasEdge("a", "a"))
		assert.Zero(t, g.RemoveSelfLoops())
	})
}

func TestRemoval(t *testing.T) {
	g := chain(t, [2]string{"a", "b"}, [2]string{"b", "c"})

	g.RemoveEdge("a", "b")
	assert.False(t, g.HasEdge("a", "b"))
	g.RemoveEdge("a", "zzz") // no-op

	g.RemoveNode("b")
	assert.False(t, g.HasNode("b"))
	preds, err := g.Predecessors("c")
	require.NoError(t, err)
	assert.Empty(t, preds)

	g.RemoveNode("does-not-exist")
	assert.Equal(t, 2, g.Len())
}

func TestTraversals(t *testing.T) {
	g := chain(t,
		[2]string{"a", "b"},
		[2]string{"a", "c"},
		[2]string{"b", "d"},
		[2]string{"c", "d"},
		[2]string{"d", "e"},
	)

	preds, err := g.Predecessors("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, preds)

	succ, err := g.Successors("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, succ)

	desc, err := g.Descendants("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d", "e"}, desc)

	t.Run("descendants cache is invalidated by mutation", func(t *testing.T) {
		g.AddNode("f")
		require.NoError(t, g.AddEdge("e", "f"))
		desc, err := g.Descendants("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d", "e", "f"}, desc)
	})

	t.Run("callers cannot corrupt cached results", func(t *testing.T) {
		desc, err := g.Descendants("d")
		require.NoError(t, err)
		desc[0] = "mutated"
		again, err := g.Descendants("d")
		require.NoError(t, err)
		assert.Equal(t, []string{"e", "f"}, again)
	})

	t.Run("unknown node is an error", func(t *testing.T) {
		_, err := g.Predecessors("nope")
		assert.True(t, errors.Is(err, ErrNodeNotFound))
		_, err = g.Successors("nope")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		_, err = g.Descendants("nope")
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})
}

func TestSubgraphAndCopy(t *testing.T) {
	g := chain(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})

	sub := g.Subgraph([]string{"a", "c", "missing"})
	assert.Equal(t, []string{"a", "c"}, sub.Nodes())
	assert.Equal(t, []Edge{{From: "a", To: "c"}}, sub.Edges())

	cp := g.Copy()
	cp.RemoveNode("b")
	assert.True(t, g.HasNode("b"), "copy must not share state with the original")
	assert.Len(t, g.Edges(), 3)
}

func TestDescendantsCacheGrowsWithGraph(t *testing.T) {
	g := New()
	size := minDescendantCache + 1000
	for i := 0; i < size; i++ {
		g.AddNode(fmt.Sprintf("n%05d", i))
	}
	for _, id := range g.Nodes() {
		_, err := g.Descendants(id)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, g.cacheSize, size)
	assert.Equal(t, size, g.descendants.Len(), "every node stays memoised")
}
