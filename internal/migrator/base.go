package migrator

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/juju/collections/set"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/scheduler"
)

// Relevance selects packages by name and by what they require.
type Relevance struct {
	// Requires matches packages whose host, run or test requirements name
	// any of these packages.
	Requires []string
	// Include always matches these packages.
	Include []string
	// Exclude never matches these packages, overriding the other fields.
	Exclude []string
}

// Match reports whether n is selected. An empty Requires and Include select
// every package not excluded.
func (r Relevance) Match(n *node.Node) bool {
	if set.NewStrings(r.Exclude...).Contains(n.Name) {
		return false
	}
	if len(r.Requires) == 0 && len(r.Include) == 0 {
		return true
	}
	if set.NewStrings(r.Include...).Contains(n.Name) {
		return true
	}
	return !set.NewStrings(r.Requires...).Intersection(n.Requirements.Relevant()).IsEmpty()
}

// Config carries the options shared by the built-in kinds.
type Config struct {
	Settings  Settings
	Relevance Relevance
	// ObjectVersion distinguishes reruns of an otherwise identical
	// migration. Zero leaves it out of the UID.
	ObjectVersion int
	// UIDFields are extra fields folded into the UID.
	UIDFields map[string]string
	// AllowBadStates lists bad-state message prefixes that do not exclude a
	// package.
	AllowBadStates []string
	// MaxOpen caps concurrently open attempts. Zero means no cap.
	MaxOpen int
	// Piggyback steps ride along with every successful change.
	Piggyback []Step
	// Mutator applies the changes.
	Mutator mutate.Mutator
}

// base holds the behaviour shared by the built-in kinds. Kinds pass their
// own UID into its helpers since embedding does not dispatch.
type base struct {
	cfg    Config
	policy scheduler.Policy
}

func newBase(cfg Config, defaultPolicy scheduler.Policy) (base, error) {
	if cfg.Settings.Name == "" {
		return base{}, fmt.Errorf("migrator has no name")
	}
	if cfg.Settings.Quota < 0 {
		return base{}, fmt.Errorf("migrator %s: quota must not be negative", cfg.Settings.Name)
	}
	if cfg.Mutator == nil {
		return base{}, fmt.Errorf("migrator %s: no mutator", cfg.Settings.Name)
	}
	policy, err := scheduler.ByName(cfg.Settings.Ordering, defaultPolicy)
	if err != nil {
		return base{}, fmt.Errorf("migrator %s: %w", cfg.Settings.Name, err)
	}
	return base{cfg: cfg, policy: policy}, nil
}

func (b *base) Name() string {
	return b.cfg.Settings.Name
}

func (b *base) Settings() Settings {
	return b.cfg.Settings
}

func (b *base) Relevant(n *node.Node) bool {
	return b.cfg.Relevance.Match(n)
}

func (b *base) Order(s *Scope, candidates *dag.Graph) []string {
	return b.policy.Order(candidates, s.Graph)
}

// uid assembles the common UID fields around the kind-specific ones.
func (b *base) uid(kind string, version int, fields map[string]string) migration.UID {
	out := maps.Clone(b.cfg.UIDFields)
	if out == nil {
		out = make(map[string]string)
	}
	maps.Copy(out, fields)
	out[migration.FieldMigratorName] = kind
	out[migration.FieldMigratorVersion] = strconv.Itoa(version)
	if b.cfg.ObjectVersion > 0 {
		out[migration.FieldMigratorObjectVersion] = strconv.Itoa(b.cfg.ObjectVersion)
	}
	return migration.NewUID(out)
}

// filter applies the checks every kind shares.
func (b *base) filter(s *Scope, n *node.Node, uid migration.UID) (bool, string) {
	switch {
	case n.Archived:
		return true, "archived"
	case !s.Sub.HasNode(n.Name):
		return true, "not relevant"
	case n.Migrations.Has(uid):
		return true, "already attempted"
	case n.BadState != nil && !b.allowedBadState(n.BadState):
		return true, "bad state"
	case b.cfg.MaxOpen > 0 && s.Open() >= b.cfg.MaxOpen:
		return true, "open attempt cap reached"
	}
	return false, ""
}

func (b *base) allowedBadState(bs *node.BadState) bool {
	for _, prefix := range b.cfg.AllowBadStates {
		if strings.HasPrefix(bs.Message, prefix) {
			return true
		}
	}
	return false
}

// apply hands the parent edits and every applicable piggyback step to the
// mutator.
func (b *base) apply(ctx context.Context, n *node.Node, uid migration.UID, edits []mutate.Edit) (Result, error) {
	req := mutate.Request{
		Node:     n,
		Migrator: b.Name(),
		UID:      uid,
		Edits:    edits,
	}
	for _, step := range b.cfg.Piggyback {
		if step.Applies(n) {
			req.Piggyback = append(req.Piggyback, step.Edits(n)...)
		}
	}
	remote, err := b.cfg.Mutator.Apply(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{UID: uid, Remote: remote}, nil
}
