package migrator

import (
	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/migration"
)

// Scope is what one migrator sees of one invocation: the canonical graph,
// the derived subgraph computed from it, and counters that change as the run
// loop records attempts.
type Scope struct {
	// Graph is the canonical graph. Node attributes are read and written
	// through it.
	Graph *graph.Graph
	// Sub is the migrator's derived subgraph. It is private to this scope.
	Sub *dag.Graph

	topLevel map[string]bool
	cycles   map[string]struct{}
	open     int
}

// NewScope derives m's subgraph from g and counts m's open attempts.
func NewScope(m Migrator, g *graph.Graph) *Scope {
	sub := g.Derive(m.Relevant)
	s := &Scope{
		Graph:    g,
		Sub:      sub,
		topLevel: make(map[string]bool),
		cycles:   sub.CycleMembers(),
	}
	for _, id := range sub.TopLevel() {
		s.topLevel[id] = true
	}
	for _, name := range g.Names() {
		n, _ := g.Node(name)
		if rec, ok := n.Migrations.Find(m.UID(n)); ok && rec.Open() {
			s.open++
		}
	}
	return s
}

// TopLevel reports whether id has no predecessors in the derived subgraph.
func (s *Scope) TopLevel(id string) bool {
	return s.topLevel[id]
}

// OnCycle reports whether id lies on a cycle of the derived subgraph.
func (s *Scope) OnCycle(id string) bool {
	_, ok := s.cycles[id]
	return ok
}

// Cyclic reports whether the derived subgraph has any cycle.
func (s *Scope) Cyclic() bool {
	return len(s.cycles) > 0
}

// Open returns the number of open attempts of this migration.
func (s *Scope) Open() int {
	return s.open
}

// Recorded updates the scope after the run loop appended a record.
func (s *Scope) Recorded(r Result) {
	if r.Remote != nil && r.Remote.State == migration.StateOpen {
		s.open++
	}
}
