package dag

import (
	"iter"
	"slices"
	"strings"
)

// TieBreak orders two node ids competing for the next slot in an order.
// It returns a negative number when a should come first.
type TieBreak func(a, b string) int

type orderOptions struct {
	tieBreak TieBreak
}

// OrderOption customises CyclicOrder.
type OrderOption func(*orderOptions)

// WithTieBreak replaces the default lexicographic tie-break.
func WithTieBreak(tb TieBreak) OrderOption {
	return func(o *orderOptions) {
		if tb != nil {
			o.tieBreak = tb
		}
	}
}

// CyclicOrder yields every node of g exactly once in dependency order,
// tolerating cycles.
//
// Nodes are emitted Kahn-style once all of their not-yet-emitted
// predecessors are out. The designated topLevel nodes are treated as having
// no unsatisfied predecessors; a nil topLevel means g.TopLevel(). When nothing
// is ready but nodes remain, a cycle is broken by emitting the remaining cycle
// member with the fewest unsatisfied predecessors. Every choice between equals uses
// the tie-break, lexicographic by default, so identical inputs give identical
// orders.
//
// The graph is snapshotted when iteration starts; each range over the
// sequence recomputes the order from scratch.
func CyclicOrder(g *Graph, topLevel []string, opts ...OrderOption) iter.Seq[string] {
	o := orderOptions{tieBreak: strings.Compare}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(string) bool) {
		seeds := topLevel
		if seeds == nil {
			seeds = g.TopLevel()
		}
		s := newSortState(g, seeds, o.tieBreak)
		for {
			id, ok := s.next()
			if !ok {
				return
			}
			if !yield(id) {
				return
			}
		}
	}
}

// Order collects CyclicOrder into a slice.
func Order(g *Graph, topLevel []string, opts ...OrderOption) []string {
	return slices.Collect(CyclicOrder(g, topLevel, opts...))
}

type sortState struct {
	tieBreak  TieBreak
	succ      map[string][]string
	remaining map[string]int
	emitted   map[string]bool
	ready     []string // kept sorted by tieBreak
	unemitted int
	onCycle   map[string]struct{}
}

func newSortState(g *Graph, topLevel []string, tb TieBreak) *sortState {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	s := &sortState{
		tieBreak:  tb,
		succ:      make(map[string][]string, len(g.nodes)),
		remaining: make(map[string]int, len(g.nodes)),
		emitted:   make(map[string]bool, len(g.nodes)),
		unemitted: len(g.nodes),
		onCycle:   g.cycleMembers(),
	}
	for id, n := range g.nodes {
		count := len(n.deps)
		if _, self := n.deps[id]; self {
			count--
		}
		s.remaining[id] = count
		for childID := range n.dependents {
			if childID != id {
				s.succ[id] = append(s.succ[id], childID)
			}
		}
	}
	for _, id := range topLevel {
		if _, ok := g.nodes[id]; ok {
			s.remaining[id] = 0
		}
	}
	for id, count := range s.remaining {
		if count == 0 {
			s.push(id)
		}
	}
	return s
}

func (s *sortState) push(id string) {
	pos, found := slices.BinarySearchFunc(s.ready, id, s.tieBreak)
	if found && s.ready[pos] == id {
		return
	}
	s.ready = slices.Insert(s.ready, pos, id)
}

func (s *sortState) next() (string, bool) {
	if s.unemitted == 0 {
		return "", false
	}
	if len(s.ready) == 0 {
		s.push(s.breakCycle())
	}
	id := s.ready[0]
	s.ready = s.ready[1:]
	s.emitted[id] = true
	s.unemitted--

	for _, childID := range s.succ[id] {
		if s.emitted[childID] {
			continue
		}
		s.remaining[childID]--
		if s.remaining[childID] == 0 {
			s.push(childID)
		}
	}
	return id, true
}

// breakCycle picks the unemitted cycle member with the fewest unsatisfied
// predecessors. Nodes merely downstream of a cycle are never chosen: whenever
// nothing is ready the unemitted nodes contain a cycle of their own.
func (s *sortState) breakCycle() string {
	var (
		best  string
		found bool
	)
	for id, count := range s.remaining {
		if s.emitted[id] {
			continue
		}
		if _, ok := s.onCycle[id]; !ok {
			continue
		}
		if !found || count < s.remaining[best] ||
			(count == s.remaining[best] && s.tieBreak(id, best) < 0) {
			best, found = id, true
		}
	}
	return best
}
