// Package migrator defines the unit of work of a migration: which packages
// it applies to, the identity of an attempt, the change itself, and the order
// in which packages are visited.
//
// New migration kinds implement Migrator; the Version and Rebuild kinds in
// this package cover version bumps and build-number bumps against a changed
// dependency. Piggyback steps add extra edits to a parent's successful
// change.
package migrator

import (
	"context"
	"time"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/node"
)

// Settings is the per-migrator part of the configuration that the run loop
// itself reads.
type Settings struct {
	// Name is the configured migration name, unique per invocation.
	Name string
	// Quota caps successful transforms per invocation. Zero means status only.
	Quota int
	// Ordering selects the ordering policy; empty means the kind's default.
	Ordering string
	// Deadline bounds this migrator's share of the invocation. Zero means
	// only the shared deadline applies.
	Deadline time.Duration
}

// Result is the outcome of a successful transform.
type Result struct {
	UID    migration.UID
	Remote *migration.Remote
}

// Migrator is one migration class.
type Migrator interface {
	// Name returns the configured migration name.
	Name() string
	// Settings returns the run-loop settings.
	Settings() Settings
	// Relevant is the predicate selecting the packages this migration
	// touches. It decides the derived subgraph.
	Relevant(n *node.Node) bool
	// UID computes the identity an attempt on n is recorded under.
	UID(n *node.Node) migration.UID
	// Skip reports whether n must not be attempted now, and why.
	Skip(s *Scope, n *node.Node) (bool, string)
	// Transform applies the change to n. It must not append the migration
	// record; the run loop does that.
	Transform(ctx context.Context, s *Scope, n *node.Node) (Result, error)
	// Order sequences the candidate nodes.
	Order(s *Scope, candidates *dag.Graph) []string
}

// Verifier is implemented by migrators that can tell, from the attributes
// alone, that their change is already in place.
type Verifier interface {
	AlreadyApplied(n *node.Node) bool
}
