package dag

import (
	"slices"
	"strings"
)

// Cycle is one elementary circuit, listed from its lexicographically
// smallest node in edge order.
type Cycle []string

// StronglyConnected returns the strongly connected components of the graph
// (Tarjan). Each component is sorted and the components are ordered by their
// first element.
func (g *Graph) StronglyConnected() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.components(nil)
}

// components runs Tarjan's algorithm restricted to the ids in allow (all
// nodes when allow is nil). Callers hold the read lock.
func (g *Graph) components(allow map[string]bool) [][]string {
	var (
		index   = 0
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		stack   []string
		out     [][]string
	)

	var strongConnect func(id string)
	strongConnect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, childID := range sortedKeys(g.nodes[id].dependents) {
			if allow != nil && !allow[childID] {
				continue
			}
			if _, seen := indices[childID]; !seen {
				strongConnect(childID)
				lowlink[id] = min(lowlink[id], lowlink[childID])
			} else if onStack[childID] {
				lowlink[id] = min(lowlink[id], indices[childID])
			}
		}

		if lowlink[id] == indices[id] {
			var comp []string
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				comp = append(comp, top)
				if top == id {
					break
				}
			}
			slices.Sort(comp)
			out = append(out, comp)
		}
	}

	roots := g.sortedIDs
	if allow != nil {
		roots = func() []string { return sortedKeys(allow) }
	}
	for _, id := range roots() {
		if _, seen := indices[id]; !seen {
			strongConnect(id)
		}
	}
	slices.SortFunc(out, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return out
}

// CycleMembers returns the set of nodes lying on at least one cycle,
// including nodes with a self-loop.
func (g *Graph) CycleMembers() map[string]struct{} {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.cycleMembers()
}

func (g *Graph) cycleMembers() map[string]struct{} {
	members := make(map[string]struct{})
	for _, comp := range g.components(nil) {
		if len(comp) > 1 {
			for _, id := range comp {
				members[id] = struct{}{}
			}
			continue
		}
		id := comp[0]
		if _, self := g.nodes[id].deps[id]; self {
			members[id] = struct{}{}
		}
	}
	return members
}

// SimpleCycles enumerates the elementary circuits of the graph using
// Johnson's algorithm. Enumeration stops after limit cycles when limit is
// positive. The result is deterministic for identical graphs.
//
// Every circuit lies inside one strongly connected component, so only
// members of non-trivial components and self-looping nodes start a search,
// and each search stays inside its component. An acyclic graph costs a
// single pass.
func (g *Graph) SimpleCycles(limit int) []Cycle {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	compOf := make(map[string][]string)
	var starts []string
	for _, comp := range g.components(nil) {
		if len(comp) == 1 {
			if _, self := g.nodes[comp[0]].deps[comp[0]]; !self {
				continue
			}
		}
		for _, id := range comp {
			compOf[id] = comp
		}
		starts = append(starts, comp...)
	}
	slices.Sort(starts)

	var cycles []Cycle
	full := func() bool { return limit > 0 && len(cycles) >= limit }

	for _, start := range starts {
		if full() {
			break
		}
		// Only members of start's component not smaller than start, and
		// only the component of that restriction which contains start.
		allow := make(map[string]bool, len(compOf[start]))
		for _, id := range compOf[start] {
			if id >= start {
				allow[id] = true
			}
		}
		var scc map[string]bool
		for _, comp := range g.components(allow) {
			if slices.Contains(comp, start) {
				scc = make(map[string]bool, len(comp))
				for _, id := range comp {
					scc[id] = true
				}
				break
			}
		}
		if len(scc) == 1 {
			if _, self := g.nodes[start].deps[start]; self {
				cycles = append(cycles, Cycle{start})
			}
			continue
		}

		blocked := make(map[string]bool)
		blockedBy := make(map[string]map[string]bool)
		var path []string

		var unblock func(id string)
		unblock = func(id string) {
			blocked[id] = false
			for w := range blockedBy[id] {
				delete(blockedBy[id], w)
				if blocked[w] {
					unblock(w)
				}
			}
		}

		var circuit func(id string) bool
		circuit = func(id string) bool {
			found := false
			path = append(path, id)
			blocked[id] = true
			for _, w := range sortedKeys(g.nodes[id].dependents) {
				if !scc[w] || full() {
					continue
				}
				if w == start {
					cycles = append(cycles, slices.Clone(Cycle(path)))
					found = true
				} else if !blocked[w] && circuit(w) {
					found = true
				}
			}
			if found {
				unblock(id)
			} else {
				for _, w := range sortedKeys(g.nodes[id].dependents) {
					if !scc[w] {
						continue
					}
					if blockedBy[w] == nil {
						blockedBy[w] = make(map[string]bool)
					}
					blockedBy[w][id] = true
				}
			}
			path = path[:len(path)-1]
			return found
		}
		circuit(start)
	}
	return cycles
}
