// Package quota provides the remaining remote-API budget the run loop checks
// before every node.
package quota

import (
	"context"
	"sync"
)

// Source reports how many remote API calls are left. Zero or less stops the
// run.
type Source interface {
	Remaining(ctx context.Context) (int, error)
}

// Spender is a Source that is charged for calls made against it.
type Spender interface {
	Source
	Spend(n int)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (int, error)

func (f Func) Remaining(ctx context.Context) (int, error) {
	return f(ctx)
}

// Budget is an in-process counter shared by every migrator of one
// invocation.
type Budget struct {
	mu   sync.Mutex
	left int
}

// NewBudget returns a budget with n calls available. A negative n means
// unlimited.
func NewBudget(n int) *Budget {
	return &Budget{left: n}
}

// Remaining implements Source.
func (b *Budget) Remaining(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.left < 0 {
		return int(^uint(0) >> 1), nil
	}
	return b.left, nil
}

// Spend charges n calls. Spending from an unlimited budget is free.
func (b *Budget) Spend(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.left < 0 {
		return
	}
	b.left = max(b.left-n, 0)
}
