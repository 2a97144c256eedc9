// Package dag holds the package dependency topology: string-keyed nodes joined
// by directed edges, where an edge u -> v means v needs u first.
//
// The graph tolerates cycles and self-loops. Everything that decides migration
// order lives here: order-preserving node removal (Pluck), cycle enumeration
// (SimpleCycles, StronglyConnected) and the cycle-tolerant topological order
// (CyclicOrder).
//
// A Graph carries topology only. Package attributes are owned by the node
// package and joined to the topology by the graph package.
package dag
