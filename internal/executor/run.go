package executor

import (
	"context"
	"time"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/status"
)

// runMigrator walks one migrator's order. shared is the invocation
// deadline (zero for none); budgetGone skips straight to reporting.
func (e *Executor) runMigrator(ctx context.Context, runID string, g *graph.Graph, m migrator.Migrator, shared time.Time, budgetGone bool) (Run, error) {
	logger := ctxlog.FromContext(ctx)
	settings := m.Settings()
	limit := settings.Quota
	if e.statusOnly {
		limit = 0
	}

	run := Run{Migrator: m.Name(), StartTime: e.clock.Now()}
	deadline := shared
	if settings.Deadline > 0 {
		own := run.StartTime.Add(settings.Deadline)
		if deadline.IsZero() || own.Before(deadline) {
			deadline = own
		}
	}

	// Init: the scope copies the derived subgraph once; the order runs over
	// it so survivors keep full reachability, and Skip is re-checked per
	// node because earlier successes change readiness.
	scope := migrator.NewScope(m, g)
	effective := status.EffectiveGraph(m, scope)
	run.Candidates = effective.Nodes()
	run.Order = m.Order(scope, scope.Sub)
	if e.metrics != nil {
		e.metrics.Candidates(m.Name(), len(run.Candidates))
	}
	logger.Info("▶️ Starting migrator", "candidates", len(run.Candidates), "quota", limit, "deadline", deadline)

	run.StopReason = StopExhausted
	if budgetGone {
		run.StopReason = StopAPIBudget
	}

loop:
	for _, id := range run.Order {
		if run.StopReason != StopExhausted {
			break
		}
		switch {
		case ctx.Err() != nil:
			run.StopReason = StopCancelled
			break loop
		case !deadline.IsZero() && !e.clock.Now().Before(deadline):
			run.StopReason = StopDeadline
			break loop
		case run.SuccessCount >= limit:
			run.StopReason = StopQuota
			break loop
		}

		n, ok := g.Node(id)
		if !ok {
			continue
		}
		if skip, why := m.Skip(scope, n); skip {
			logger.Debug("Skipping node", "node", id, "reason", why)
			continue
		}

		remaining, err := e.budget.Remaining(ctx)
		if err != nil {
			logger.Warn("Could not read remote API budget, stopping", "error", err)
			run.StopReason = StopAPIBudget
			break
		}
		if remaining <= 0 {
			logger.Info("Remote API budget exhausted", "node", id)
			run.StopReason = StopAPIBudget
			break
		}

		outcome, err := e.attempt(ctx, runID, g, m, scope, n)
		run.Attempted++
		if err != nil {
			return e.finish(ctx, m, scope, run), err
		}
		switch outcome {
		case outcomeSuccess:
			run.SuccessCount++
		case outcomeQuota:
			run.StopReason = StopAPIBudget
		}
	}

	return e.finish(ctx, m, scope, run), nil
}

// finish stamps the run with its report and metrics.
func (e *Executor) finish(ctx context.Context, m migrator.Migrator, scope *migrator.Scope, run Run) Run {
	run.Elapsed = e.clock.Now().Sub(run.StartTime)
	run.Report = status.Build(m, scope)
	if e.metrics != nil {
		e.metrics.Stopped(m.Name(), string(run.StopReason))
		for st, count := range run.Report.Counts() {
			e.metrics.Status(m.Name(), string(st), count)
		}
	}
	ctxlog.FromContext(ctx).Info("✅ Finished migrator",
		"attempted", run.Attempted,
		"succeeded", run.SuccessCount,
		"stopReason", run.StopReason,
		"elapsed", run.Elapsed,
	)
	return run
}
