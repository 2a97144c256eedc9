package dag

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNodeNotFound is returned by traversals of an unknown node id.
var ErrNodeNotFound = errors.New("dag: node not found")

// minDescendantCache is the smallest number of memoised Descendants
// results. The cache grows with the graph so one entry per node fits.
const minDescendantCache = 4096

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// descendants memoises Descendants; every mutation purges it.
	descendants *lru.Cache[string, []string]
	// cacheSize is the current capacity of descendants.
	cacheSize int
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}

// Edge is a directed dependency edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}
