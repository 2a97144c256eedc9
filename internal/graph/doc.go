// Package graph is the canonical package graph: a facade joining the
// dependency topology (internal/dag) with the mutable attribute record of
// every package (internal/node).
//
// # Topology and attributes
//
// The two halves change at different rates. Topology is fixed once the
// registry has been ingested; migrators only ever look at private copies of
// it (see Derive). Attributes change after every migration attempt and are
// mutated in place on the canonical graph, which is what gets persisted.
//
//	┌────────────────────────────┐
//	│        graph.Graph         │
//	└──────┬──────────────┬──────┘
//	       │              │
//	       ▼              ▼
//	 ┌───────────┐  ┌────────────┐
//	 │ dag.Graph │  │ node.Node  │
//	 │ (edges)   │  │ (per name) │
//	 └───────────┘  └────────────┘
//
// # Derived subgraphs
//
// Derive returns the topology one migration cares about: edges are kept only
// when the dependency is in the dependent's host, run or test requirements,
// and every irrelevant package is plucked so the survivors keep their
// relative order.
//
// # Thread-Safety
//
// The name index is guarded by a RWMutex. Attribute records are handed out by
// reference and are not locked; the run loop is their single writer.
package graph
