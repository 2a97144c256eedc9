package migrator

import (
	"context"
	"strings"

	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/scheduler"
)

const rebuildMigratorVersion = 0

// waitingPrefix starts the skip reason of a package whose predecessors are
// not all migrated yet.
const waitingPrefix = "waiting on "

// WaitingOnDependencies reports whether a Skip reason is an unmet
// dependency rather than some other hold.
func WaitingOnDependencies(reason string) bool {
	return strings.HasPrefix(reason, waitingPrefix)
}

// Rebuild bumps the build number of every relevant package, dependencies
// first: a package is attempted only once each of its predecessors in the
// derived subgraph has a closed record for the same migration.
//
// Top-level packages and packages on a cycle skip the predecessor check.
type Rebuild struct {
	base
}

// NewRebuild returns a rebuild migrator. It orders by descendant count
// unless configured otherwise.
func NewRebuild(cfg Config) (*Rebuild, error) {
	b, err := newBase(cfg, scheduler.Descendants{})
	if err != nil {
		return nil, err
	}
	return &Rebuild{base: b}, nil
}

// UID implements Migrator. It is the same for every package.
func (r *Rebuild) UID(*node.Node) migration.UID {
	return r.uid(KindRebuild, rebuildMigratorVersion, map[string]string{
		migration.FieldName: r.Name(),
	})
}

// Skip implements Migrator.
func (r *Rebuild) Skip(s *Scope, n *node.Node) (bool, string) {
	if skip, why := r.filter(s, n, r.UID(n)); skip {
		return skip, why
	}
	if s.TopLevel(n.Name) || s.OnCycle(n.Name) {
		return false, ""
	}
	preds, err := s.Sub.Predecessors(n.Name)
	if err != nil {
		return true, "not relevant"
	}
	for _, p := range preds {
		pn, ok := s.Graph.Node(p)
		if !ok || pn.Archived {
			continue
		}
		rec, ok := pn.Migrations.Find(r.UID(pn))
		if !ok || !rec.Closed() {
			return true, waitingPrefix + p
		}
	}
	return false, ""
}

// Transform implements Migrator.
func (r *Rebuild) Transform(ctx context.Context, _ *Scope, n *node.Node) (Result, error) {
	return r.apply(ctx, n, r.UID(n), []mutate.Edit{
		{Key: node.RecipeBuildNumber, Value: n.BuildNumber() + 1},
	})
}
