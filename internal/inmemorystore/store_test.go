package inmemorystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/nodestore"
)

func TestLoadEmpty(t *testing.T) {
	_, err := New().Load(context.Background())
	assert.ErrorIs(t, err, nodestore.ErrNotFound)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := graph.New()
	a := node.New("a")
	g.Add(a)
	g.Add(node.New("b"))
	require.NoError(t, g.Link("a", "b"))
	require.NoError(t, s.Seed(g))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	la, _ := loaded.Node("a")
	la.Archived = true
	assert.False(t, a.Archived, "loaded graph is independent")

	require.NoError(t, s.Save(ctx, loaded, []string{"a"}))
	require.NoError(t, s.Save(ctx, loaded, []string{"a"}), "saving twice is harmless")

	again, err := s.Load(ctx)
	require.NoError(t, err)
	aa, _ := again.Node("a")
	assert.True(t, aa.Archived)
	assert.True(t, again.Topology().HasEdge("a", "b"))
	assert.Equal(t, [][]string{{"a"}, {"a"}}, s.Saves())
	assert.NoError(t, s.Close())
}
