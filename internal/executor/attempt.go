package executor

import (
	"context"
	"fmt"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/fault"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/metrics"
	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/node"
)

const (
	outcomeSuccess   = metrics.OutcomeSuccess
	outcomeRejected  = metrics.OutcomeRejected
	outcomeTransient = metrics.OutcomeTransient
	outcomePermanent = metrics.OutcomePermanent
	outcomeQuota     = metrics.OutcomeQuota
)

// attempt transforms one node, writes the outcome onto its attributes and
// persists them. Node-local faults are absorbed; only a failed save is
// returned.
func (e *Executor) attempt(ctx context.Context, runID string, g *graph.Graph, m migrator.Migrator, scope *migrator.Scope, n *node.Node) (string, error) {
	logger := ctxlog.FromContext(ctx).With("node", n.Name)
	began := e.clock.Now()

	res, err := m.Transform(ctx, scope, n)
	kind := fault.KindOf(err)

	var outcome string
	var changed []string
	switch {
	case err == nil:
		if res.UID.IsZero() {
			res.UID = m.UID(n)
		}
		n.Migrations = append(n.Migrations, migration.Record{UID: res.UID, Remote: res.Remote})
		n.BadState = nil
		scope.Recorded(res)
		changed = []string{n.Name}
		outcome = outcomeSuccess
		logger.Info("Migrated node", "uid", res.UID.String())

	case kind == fault.KindRejected:
		outcome = outcomeRejected
		logger.Debug("Transform found nothing to change", "reason", err)

	case kind == fault.KindQuotaExhausted:
		outcome = outcomeQuota
		logger.Warn("Remote API quota exhausted during transform", "error", err)

	case kind == fault.KindPermanent:
		n.Archived = true
		changed = []string{n.Name}
		outcome = outcomePermanent
		logger.Warn("Archiving node after permanent fault", "error", err)

	default:
		n.BadState = &node.BadState{
			Migrator: m.Name(),
			RunID:    runID,
			Kind:     kind.String(),
			Message:  err.Error(),
			At:       e.clock.Now().UTC(),
		}
		changed = []string{n.Name}
		outcome = outcomeTransient
		logger.Warn("Node failed, recorded bad state", "kind", kind, "error", err)
	}

	// Persist regardless of outcome so partial progress survives a crash.
	if err := e.persist(ctx, g, changed); err != nil {
		return outcome, fmt.Errorf("saving after %s: %w", n.Name, err)
	}
	if e.metrics != nil {
		e.metrics.Attempt(m.Name(), outcome, e.clock.Now().Sub(began))
	}
	return outcome, nil
}
