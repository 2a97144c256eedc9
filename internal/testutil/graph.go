// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/node"
)

// Chain builds a graph from edges. Each edge {from, to} makes to require
// from at host level and links them. Nodes listed in extra are added
// unlinked.
func Chain(t *testing.T, edges [][2]string, extra ...string) *graph.Graph {
	t.Helper()
	g := graph.New()
	add := func(name string) {
		if _, ok := g.Node(name); !ok {
			g.Add(node.New(name))
		}
	}
	for _, e := range edges {
		add(e[0])
		add(e[1])
		to := MustNode(t, g, e[1])
		to.Requirements.Host.Add(e[0])
		require.NoError(t, g.Link(e[0], e[1]))
	}
	for _, name := range extra {
		add(name)
	}
	return g
}

// MustNode returns the named node or fails the test.
func MustNode(t *testing.T, g *graph.Graph, name string) *node.Node {
	t.Helper()
	n, ok := g.Node(name)
	require.True(t, ok, "node %q not in graph", name)
	return n
}
