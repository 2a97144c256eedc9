package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/node"
)

func buildGraph(t *testing.T, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		for _, name := range e {
			if _, ok := g.Node(name); !ok {
				g.Add(node.New(name))
			}
		}
		require.NoError(t, g.Link(e[0], e[1]))
	}
	return g
}

func TestTopological(t *testing.T) {
	g := buildGraph(t, [2]string{"A", "B"}, [2]string{"B", "C"})
	assert.Equal(t, []string{"A", "B", "C"}, Topological{}.Order(g.Topology(), g))

	rev := Topological{TieBreak: func(a, b string) int { return strings.Compare(b, a) }}
	g.Add(node.New("Z"))
	assert.Equal(t, []string{"Z", "A", "B", "C"}, rev.Order(g.Topology(), g))
}

func TestDescendants(t *testing.T) {
	// openssl has three dependents, zlib two, curl one.
	full := buildGraph(t,
		[2]string{"openssl", "curl"},
		[2]string{"curl", "git"},
		[2]string{"openssl", "python"},
		[2]string{"zlib", "python"},
		[2]string{"zlib", "pillow"},
		[2]string{"aaa", "bbb"},
	)
	candidates := full.Topology().Subgraph([]string{"curl", "zlib", "openssl", "aaa", "ccc"})
	got := Descendants{}.Order(candidates, full)
	assert.Equal(t, []string{"openssl", "zlib", "aaa", "curl"}, got)
}

func TestByName(t *testing.T) {
	p, err := ByName("", Descendants{})
	require.NoError(t, err)
	assert.IsType(t, Descendants{}, p)

	p, err = ByName(OrderTopological, nil)
	require.NoError(t, err)
	assert.IsType(t, Topological{}, p)

	_, err = ByName("random", nil)
	assert.ErrorContains(t, err, `unknown ordering policy "random"`)
}
