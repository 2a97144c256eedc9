// Package nodestore defines where the canonical graph lives between
// invocations.
//
// # Why Node Store Exists
//
// The run loop persists node attributes after every attempt so that partial
// progress survives a crash, and the next invocation starts from the saved
// state. Keeping that behind an interface lets the same loop run against a
// local file, a Postgres database or an S3 bucket.
//
// # Contract
//
//   - Load returns the full canonical graph, topology and attributes.
//   - Save persists the attributes of the named nodes. It must be idempotent:
//     saving the same state twice is harmless, and the run loop retries it.
//     Implementations that cannot save partially may write the whole graph.
//   - Topology is written in full on the first Save after Load; afterwards
//     only attributes change.
package nodestore

import (
	"context"
	"errors"

	"github.com/vk/tickgraph/internal/graph"
)

// ErrNotFound is returned by Load when no graph has been stored yet.
var ErrNotFound = errors.New("graph not found")

// Store loads and saves the canonical graph.
type Store interface {
	// Load reads the canonical graph.
	Load(ctx context.Context) (*graph.Graph, error)
	// Save persists the attributes of the changed nodes of g.
	Save(ctx context.Context, g *graph.Graph, changed []string) error
	// Close releases any connection held by the store.
	Close() error
}
