package scheduler

import (
	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/graph"
)

// Policy orders a migrator's candidate nodes.
//
// candidates is the migrator's private topology; full is the canonical
// graph, for policies that rank by global structure. Every node of
// candidates appears exactly once in the result, and equal inputs give equal
// results.
//
// # Implementations
//
//   - Topological: dependency order over candidates, cycles tolerated.
//   - Descendants: most downstream dependents in full first.
type Policy interface {
	Order(candidates *dag.Graph, full *graph.Graph) []string
}
