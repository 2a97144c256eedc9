package scheduler

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/graph"
)

// Policy identifiers accepted in configuration.
const (
	OrderTopological = "topological"
	OrderDescendants = "descendants"
)

// Topological emits candidates in dependency order. Ties, including the
// choice of where to break a cycle, go to TieBreak (lexicographic when nil).
type Topological struct {
	TieBreak dag.TieBreak
}

// Order implements Policy.
func (p Topological) Order(candidates *dag.Graph, _ *graph.Graph) []string {
	var opts []dag.OrderOption
	if p.TieBreak != nil {
		opts = append(opts, dag.WithTieBreak(p.TieBreak))
	}
	return dag.Order(candidates, candidates.TopLevel(), opts...)
}

// Descendants emits candidates with the most transitive dependents in the
// full graph first, ties broken by name. Packages unknown to the full graph
// count as having none.
type Descendants struct{}

// Order implements Policy.
func (Descendants) Order(candidates *dag.Graph, full *graph.Graph) []string {
	ids := candidates.Nodes()
	weight := make(map[string]int, len(ids))
	for _, id := range ids {
		desc, err := full.Descendants(id)
		if err != nil {
			continue
		}
		weight[id] = len(desc)
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		if c := cmp.Compare(weight[b], weight[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// ByName returns the policy registered under id. An empty id selects def.
func ByName(id string, def Policy) (Policy, error) {
	switch id {
	case "":
		return def, nil
	case OrderTopological:
		return Topological{}, nil
	case OrderDescendants:
		return Descendants{}, nil
	default:
		return nil, fmt.Errorf("unknown ordering policy %q", id)
	}
}
