package dag

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, []string](minDescendantCache)
	return &Graph{
		nodes:       make(map[string]*node),
		descendants: cache,
		cacheSize:   minDescendantCache,
	}
}

// invalidate drops memoised traversal results. Callers hold the write lock.
func (g *Graph) invalidate() {
	g.descendants.Purge()
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addNode(id)
}

func (g *Graph) addNode(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	if len(g.nodes) > g.cacheSize {
		g.cacheSize *= 2
		g.descendants.Resize(g.cacheSize)
	}
	g.invalidate()
	return n
}

// RemoveNode removes a node and all of its incident edges. Removing an
// unknown node is a no-op.
func (g *Graph) RemoveNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.removeNode(id)
}

func (g *Graph) removeNode(id string) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for depID, dep := range n.deps {
		delete(dep.dependents, id)
		delete(n.deps, depID)
	}
	for childID, child := range n.dependents {
		delete(child.deps, id)
		delete(n.dependents, childID)
	}
	delete(g.nodes, id)
	g.invalidate()
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Nodes returns every node id in lexicographic order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.sortedIDs()
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist. Self-loops are accepted; RemoveSelfLoops
// sweeps them.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s: %w", fromID, ErrNodeNotFound)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s: %w", toID, ErrNodeNotFound)
	}
	link(fromNode, toNode)
	g.invalidate()
	return nil
}

func link(from, to *node) {
	to.deps[from.id] = from
	from.dependents[to.id] = to
}

// RemoveEdge deletes the edge from -> to if present.
func (g *Graph) RemoveEdge(fromID, toID string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return
	}
	if _, ok := fromNode.dependents[toID]; !ok {
		return
	}
	delete(fromNode.dependents, toID)
	delete(g.nodes[toID].deps, fromID)
	g.invalidate()
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	_, ok = n.dependents[toID]
	return ok
}

// Edges returns all edges ordered by source then destination.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []Edge
	for _, id := range g.sortedIDs() {
		for _, to := range sortedKeys(g.nodes[id].dependents) {
			edges = append(edges, Edge{From: id, To: to})
		}
	}
	return edges
}

// Predecessors returns the sorted ids of the nodes that id depends on.
func (g *Graph) Predecessors(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return sortedKeys(n.deps), nil
}

// Successors returns the sorted ids of the nodes that depend on id.
func (g *Graph) Successors(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return sortedKeys(n.dependents), nil
}

// Descendants returns every node reachable from id, excluding id itself
// unless it lies on a cycle.
func (g *Graph) Descendants(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if cached, ok := g.descendants.Get(id); ok {
		return slices.Clone(cached), nil
	}

	seen := make(map[string]struct{})
	queue := []*node{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for childID, child := range cur.dependents {
			if _, ok := seen[childID]; ok {
				continue
			}
			seen[childID] = struct{}{}
			queue = append(queue, child)
		}
	}
	out := sortedKeys(seen)
	g.descendants.Add(id, out)
	return slices.Clone(out), nil
}

// TopLevel returns the sorted ids of nodes without predecessors, ignoring
// self-loops.
func (g *Graph) TopLevel() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var top []string
	for _, id := range g.sortedIDs() {
		n := g.nodes[id]
		_, self := n.deps[id]
		if len(n.deps) == 0 || (self && len(n.deps) == 1) {
			top = append(top, id)
		}
	}
	return top
}

// Copy returns a deep copy of the topology.
func (g *Graph) Copy() *Graph {
	return g.Subgraph(g.Nodes())
}

// Subgraph returns the subgraph induced by ids: those nodes plus every edge
// joining two of them. Unknown ids are ignored.
func (g *Graph) Subgraph(ids []string) *Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := New()
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			out.addNode(id)
		}
	}
	for id, n := range out.nodes {
		for childID := range g.nodes[id].dependents {
			if child, ok := out.nodes[childID]; ok {
				link(n, child)
			}
		}
	}
	return out
}

// RemoveSelfLoops deletes every edge v -> v and reports how many it removed.
func (g *Graph) RemoveSelfLoops() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	removed := 0
	for id, n := range g.nodes {
		if _, ok := n.deps[id]; ok {
			delete(n.deps, id)
			delete(n.dependents, id)
			removed++
		}
	}
	if removed > 0 {
		g.invalidate()
	}
	return removed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
