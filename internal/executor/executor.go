// Package executor is the budgeted run loop: it walks each configured
// migrator's ordered candidates, applies transforms within a wall-clock
// deadline, a per-migrator quota and a shared remote API budget, and
// persists node attributes after every attempt.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/metrics"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/nodestore"
	"github.com/vk/tickgraph/internal/quota"
	"github.com/vk/tickgraph/internal/status"
)

// StopReason says why a migrator's loop ended.
type StopReason string

const (
	// StopExhausted means every node in the order was visited.
	StopExhausted StopReason = "exhausted"
	// StopQuota means the migrator reached its success quota.
	StopQuota StopReason = "quota"
	// StopDeadline means the wall-clock deadline passed.
	StopDeadline StopReason = "deadline"
	// StopAPIBudget means the remote API budget ran out. It ends the whole
	// invocation.
	StopAPIBudget StopReason = "api-budget"
	// StopCancelled means the context was cancelled.
	StopCancelled StopReason = "cancelled"
)

// Run is the record of one migrator's loop within an invocation.
type Run struct {
	Migrator     string        `json:"migrator"`
	Candidates   []string      `json:"candidates"`
	Order        []string      `json:"order"`
	Attempted    int           `json:"attempted"`
	SuccessCount int           `json:"success_count"`
	StartTime    time.Time     `json:"start_time"`
	Elapsed      time.Duration `json:"elapsed"`
	StopReason   StopReason    `json:"stop_reason"`
	Report       status.Report `json:"report"`
}

// Summary is the outcome of one invocation.
type Summary struct {
	RunID string `json:"run_id"`
	Runs  []Run  `json:"runs"`
}

// Snapshot returns the status reports of the summary.
func (s Summary) Snapshot(at time.Time) *status.Snapshot {
	snap := &status.Snapshot{RunID: s.RunID, Generated: at}
	for _, r := range s.Runs {
		snap.Reports = append(snap.Reports, r.Report)
	}
	return snap
}

// Executor runs migrators against the canonical graph.
type Executor struct {
	store      nodestore.Store
	budget     quota.Source
	clock      clock.Clock
	deadline   time.Duration
	statusOnly bool
	metrics    *metrics.Collector
	save       saveRetry
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// WithDeadline bounds the whole invocation. Zero means no deadline.
func WithDeadline(d time.Duration) Option {
	return func(e *Executor) { e.deadline = d }
}

// WithStatusOnly forces every quota to zero.
func WithStatusOnly(on bool) Option {
	return func(e *Executor) { e.statusOnly = on }
}

// WithMetrics records run-loop metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Executor) { e.metrics = c }
}

// WithSaveRetry sets how persistence failures are retried.
func WithSaveRetry(attempts int, delay, maxDelay time.Duration) Option {
	return func(e *Executor) {
		e.save = saveRetry{attempts: attempts, delay: delay, maxDelay: maxDelay}
	}
}

// New returns an Executor persisting to store and checking budget before
// every node.
func New(store nodestore.Store, budget quota.Source, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		budget: budget,
		clock:  clock.WallClock,
		save:   defaultSaveRetry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every migrator in order against g. Migrators share the
// invocation deadline and the API budget. Stopping early for a deadline,
// quota or budget is not an error; failing to persist progress is.
func (e *Executor) Execute(ctx context.Context, g *graph.Graph, migrators []migrator.Migrator) (Summary, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "runId", runID)
	logger := ctxlog.FromContext(ctx)

	start := e.clock.Now()
	var shared time.Time
	if e.deadline > 0 {
		shared = start.Add(e.deadline)
	}

	summary := Summary{RunID: runID}
	budgetGone := false
	for _, m := range migrators {
		mctx := ctxlog.With(ctx, "migrator", m.Name())
		run, err := e.runMigrator(mctx, runID, g, m, shared, budgetGone)
		summary.Runs = append(summary.Runs, run)
		if err != nil {
			return summary, fmt.Errorf("migrator %s: %w", m.Name(), err)
		}
		if run.StopReason == StopAPIBudget {
			budgetGone = true
		}
		if run.StopReason == StopCancelled {
			break
		}
	}
	logger.Info("✅ Invocation finished", "migrators", len(summary.Runs), "elapsed", e.clock.Now().Sub(start))
	return summary, nil
}
