// Package mutate is the boundary to the step that actually changes a
// package: editing its recipe and publishing the change remotely.
package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/fault"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/node"
	"github.com/vk/tickgraph/internal/quota"
)

// Edit sets one recipe metadata key.
type Edit struct {
	Key   string
	Value any
}

// Request is one transform invocation.
type Request struct {
	// Node is the canonical attribute record of the package being changed.
	Node *node.Node
	// Migrator names the migration asking for the change.
	Migrator string
	// UID is the identity the attempt will be recorded under.
	UID migration.UID
	// Edits are the parent migration's changes.
	Edits []Edit
	// Piggyback edits ride along, applied only once the parent edits
	// changed something.
	Piggyback []Edit
}

// Mutator applies a Request. It returns the remote record on success, a
// fault.KindRejected error when nothing was applicable, and other fault kinds on
// failure.
type Mutator interface {
	Apply(ctx context.Context, req Request) (*migration.Remote, error)
}

// Local applies edits directly to the node's recipe metadata and reports the
// change as merged. It charges one call per applied request to its budget.
type Local struct {
	budget   quota.Spender
	open     bool
	linkBase string
}

// Option configures Local.
type Option func(*Local)

// WithBudget charges applied requests to b.
func WithBudget(b quota.Spender) Option {
	return func(l *Local) { l.budget = b }
}

// WithOpenRemotes leaves every change open, as if waiting for review at
// linkBase.
func WithOpenRemotes(linkBase string) Option {
	return func(l *Local) {
		l.open = true
		l.linkBase = strings.TrimRight(linkBase, "/")
	}
}

// NewLocal returns a Local mutator.
func NewLocal(opts ...Option) *Local {
	l := &Local{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply implements Mutator.
func (l *Local) Apply(ctx context.Context, req Request) (*migration.Remote, error) {
	if req.Node == nil {
		return nil, fault.Consistency("mutate: request for migrator %s has no node", req.Migrator)
	}
	if len(req.Edits) == 0 || applied(req.Node, req.Edits) {
		return nil, fault.Rejected("change already applied")
	}
	if req.Node.Recipe == nil {
		req.Node.Recipe = map[string]any{}
	}
	for _, e := range req.Edits {
		req.Node.Recipe[e.Key] = e.Value
	}
	for _, e := range req.Piggyback {
		req.Node.Recipe[e.Key] = e.Value
	}
	if l.budget != nil {
		l.budget.Spend(1)
	}
	ctxlog.FromContext(ctx).Debug("Applied recipe edits", "node", req.Node.Name, "edits", len(req.Edits), "piggyback", len(req.Piggyback))

	if l.open {
		return &migration.Remote{
			State: migration.StateOpen,
			Link:  fmt.Sprintf("%s/%s/%s", l.linkBase, req.Node.Name, req.Migrator),
		}, nil
	}
	return &migration.Remote{State: migration.StateClosed}, nil
}

// applied reports whether every edit is already reflected in n's recipe.
func applied(n *node.Node, edits []Edit) bool {
	for _, e := range edits {
		cur, ok := n.Recipe[e.Key]
		if !ok || fmt.Sprint(cur) != fmt.Sprint(e.Value) {
			return false
		}
	}
	return true
}
