package executor

import (
	"context"
	"errors"
	"time"

	"github.com/juju/retry"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/graph"
)

type saveRetry struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

var defaultSaveRetry = saveRetry{attempts: 5, delay: 200 * time.Millisecond, maxDelay: 5 * time.Second}

// persist saves the changed nodes, retrying with a doubling delay.
func (e *Executor) persist(ctx context.Context, g *graph.Graph, changed []string) error {
	logger := ctxlog.FromContext(ctx)
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return e.store.Save(ctx, g, changed)
		},
		IsFatalError: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Warn("Saving graph failed, retrying", "attempt", attempt, "error", err)
		},
		Attempts:    e.save.attempts,
		Delay:       e.save.delay,
		MaxDelay:    e.save.maxDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       e.clock,
		Stop:        ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) {
		last := retry.LastError(err)
		logger.Error("Giving up saving graph", "error", last)
		return last
	}
	return err
}
