package dag

// Pluck removes id from the graph after connecting each of its predecessors
// directly to each of its successors, so any order that was consistent with
// the graph stays consistent for the remaining nodes.
//
// A predecessor that is also a successor gains a self-loop; callers sweep
// those with RemoveSelfLoops once they are done plucking. Plucking an unknown
// node is a no-op.
func (g *Graph) Pluck(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for predID, pred := range n.deps {
		if predID == id {
			continue
		}
		for succID, succ := range n.dependents {
			if succID == id {
				continue
			}
			link(pred, succ)
		}
	}
	g.removeNode(id)
}

// PluckAll plucks every node for which drop returns true, visiting nodes in
// lexicographic order, and then sweeps the self-loops the splicing created.
func (g *Graph) PluckAll(drop func(id string) bool) {
	for _, id := range g.Nodes() {
		if drop(id) {
			g.Pluck(id)
		}
	}
	g.RemoveSelfLoops()
}
