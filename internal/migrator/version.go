package migrator

import (
	"context"

	"github.com/vk/tickgraph/internal/fault"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/scheduler"
)

// Kind names recorded in UIDs.
const (
	KindVersion = "Version"
	KindRebuild = "Rebuild"
)

const versionMigratorVersion = 0

// Version bumps packages whose upstream published a newer version. The UID
// carries the target version, so a later upstream release is a new
// migration for the same package.
type Version struct {
	base
}

var _ Verifier = (*Version)(nil)

// NewVersion returns a version-bump migrator. It orders topologically unless
// configured otherwise.
func NewVersion(cfg Config) (*Version, error) {
	b, err := newBase(cfg, scheduler.Topological{})
	if err != nil {
		return nil, err
	}
	return &Version{base: b}, nil
}

// UID implements Migrator.
func (v *Version) UID(n *node.Node) migration.UID {
	return v.uid(KindVersion, versionMigratorVersion, map[string]string{
		migration.FieldVersion: n.NewVersion,
	})
}

// Skip implements Migrator.
func (v *Version) Skip(s *Scope, n *node.Node) (bool, string) {
	if skip, why := v.filter(s, n, v.UID(n)); skip {
		return skip, why
	}
	if n.NewVersion == "" || n.NewVersion == n.Version() {
		return true, "no new version"
	}
	return false, ""
}

// AlreadyApplied implements Verifier.
func (v *Version) AlreadyApplied(n *node.Node) bool {
	return n.NewVersion != "" && n.NewVersion == n.Version()
}

// Transform implements Migrator.
func (v *Version) Transform(ctx context.Context, _ *Scope, n *node.Node) (Result, error) {
	if n.NewVersion == "" {
		return Result{}, fault.Rejected("no new version")
	}
	return v.apply(ctx, n, v.UID(n), []mutate.Edit{
		{Key: node.RecipeVersion, Value: n.NewVersion},
		{Key: node.RecipeBuildNumber, Value: 0},
	})
}
