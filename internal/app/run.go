package app

import (
	"context"
	"fmt"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/executor"
	"github.com/vk/tickgraph/internal/mutate"
	"github.com/vk/tickgraph/internal/quota"
	"github.com/vk/tickgraph/internal/registry"
)

// Run performs one invocation: it loads the canonical graph, runs every
// configured migrator and publishes their status.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started")

	if a.cfg.StatusPort > 0 {
		a.startStatusServer(ctx)
		defer a.closeStatusServer(ctx)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", a.cfg.Store, err)
	}
	defer store.Close()

	g, err := a.loadGraph(ctx, store)
	if err != nil {
		return err
	}
	a.logger.Info("Graph loaded", "nodes", g.Len())

	budget := quota.NewBudget(a.model.Run.APIBudget)
	migrators, err := a.registry.Build(ctx, a.model, registry.Deps{
		Mutator:   mutate.NewLocal(mutate.WithBudget(budget)),
		Converter: a.converter,
	})
	if err != nil {
		return fmt.Errorf("building migrators: %w", err)
	}
	if len(migrators) == 0 {
		a.logger.Warn("No migrators configured, nothing to do")
		return nil
	}

	a.logger.Info("🚀 Starting run", "migrators", len(migrators), "statusOnly", a.cfg.StatusOnly)
	exec := executor.New(store, budget,
		executor.WithClock(a.clock),
		executor.WithDeadline(a.model.Run.Deadline),
		executor.WithStatusOnly(a.cfg.StatusOnly),
		executor.WithMetrics(a.metrics),
	)
	summary, runErr := exec.Execute(ctx, g, migrators)
	a.snapshot.Store(summary.Snapshot(a.clock.Now().UTC()))
	for _, run := range summary.Runs {
		a.logger.Info("📋 Migrator status",
			"migrator", run.Migrator,
			"stopReason", run.StopReason,
			"succeeded", run.SuccessCount,
			"counts", run.Report.Counts(),
		)
	}
	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", summary.RunID, runErr)
	}
	a.logger.Info("🏁 Run finished", "runId", summary.RunID)

	if a.cfg.Serve {
		a.logger.Info("Serving status until interrupted")
		<-ctx.Done()
	}
	return nil
}
