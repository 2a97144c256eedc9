package graph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/node"
)

// Graph is the canonical package graph.
type Graph struct {
	mutex sync.RWMutex
	topo  *dag.Graph
	nodes map[string]*node.Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		topo:  dag.New(),
		nodes: make(map[string]*node.Node),
	}
}

// Add inserts n, replacing the attributes of any node with the same name.
// Existing edges are kept.
func (g *Graph) Add(n *node.Node) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.nodes[n.Name] = n
	g.topo.AddNode(n.Name)
}

// Remove deletes a node and its edges. Unknown names are ignored.
func (g *Graph) Remove(name string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.nodes, name)
	g.topo.RemoveNode(name)
}

// Node returns the attribute record for name. The record is shared: changes
// made through it are changes to the canonical graph.
func (g *Graph) Node(name string) (*node.Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns every node name in sorted order.
func (g *Graph) Names() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.topo.Nodes()
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.topo.Len()
}

// Link adds the edge from -> to, meaning to requires from.
func (g *Graph) Link(from, to string) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if err := g.topo.AddEdge(from, to); err != nil {
		return fmt.Errorf("linking %s -> %s: %w", from, to, err)
	}
	return nil
}

// Topology exposes the canonical edge set. Callers that need to change it
// must work on a Copy.
func (g *Graph) Topology() *dag.Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.topo
}

// Predecessors returns the packages name directly requires.
func (g *Graph) Predecessors(name string) ([]string, error) {
	return g.Topology().Predecessors(name)
}

// Descendants returns every package that transitively requires name.
func (g *Graph) Descendants(name string) ([]string, error) {
	return g.Topology().Descendants(name)
}

// Copy returns a deep copy of the graph, attributes included.
func (g *Graph) Copy() *Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	out := &Graph{
		topo:  g.topo.Copy(),
		nodes: make(map[string]*node.Node, len(g.nodes)),
	}
	for name, n := range g.nodes {
		out.nodes[name] = n.Clone()
	}
	return out
}

// LinkRequirements derives edges from requirement sets: u -> v is added when
// one of u's outputs appears in any of v's requirements. It returns the number
// of edges added.
func (g *Graph) LinkRequirements() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	producers := g.producers()
	added := 0
	for _, name := range g.topo.Nodes() {
		for _, req := range g.nodes[name].Requirements.All().SortedValues() {
			for _, from := range producers[req] {
				if from == name || g.topo.HasEdge(from, name) {
					continue
				}
				// Both ends exist, so AddEdge cannot fail.
				_ = g.topo.AddEdge(from, name)
				added++
			}
		}
	}
	return added
}

// producers maps each output name to the packages publishing it. Callers
// hold the read lock.
func (g *Graph) producers() map[string][]string {
	out := make(map[string][]string)
	for name, n := range g.nodes {
		for _, o := range n.OutputNames() {
			out[o] = append(out[o], name)
		}
	}
	for o := range out {
		slices.Sort(out[o])
	}
	return out
}

// Derive returns the private topology a migration schedules over. Edges
// u -> v survive only when an output of u is in v's host, run or test
// requirements; then every node for which relevant is false is plucked.
// The canonical graph is not modified.
func (g *Graph) Derive(relevant func(*node.Node) bool) *dag.Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	sub := g.topo.Copy()
	for _, e := range sub.Edges() {
		from, to := g.nodes[e.From], g.nodes[e.To]
		if from == nil || to == nil || !requiredFor(from, to) {
			sub.RemoveEdge(e.From, e.To)
		}
	}
	sub.PluckAll(func(name string) bool {
		n, ok := g.nodes[name]
		return !ok || !relevant(n)
	})
	return sub
}

func requiredFor(from, to *node.Node) bool {
	reqs := to.Requirements.Relevant()
	for _, o := range from.OutputNames() {
		if reqs.Contains(o) {
			return true
		}
	}
	return false
}
