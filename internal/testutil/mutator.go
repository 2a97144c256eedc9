package testutil

import (
	"context"
	"sync"

	"github.com/vk/tickgraph/internal/migration"
	"github.com/vk/tickgraph/internal/mutate"
)

// RecordingMutator wraps a mutator, remembers which nodes it was asked to
// change, and fails nodes listed in Fail with the given error. OnApply, when
// set, runs before every call.
type RecordingMutator struct {
	Inner   mutate.Mutator
	Fail    map[string]error
	OnApply func(name string)

	mu    sync.Mutex
	calls []string
}

// NewRecordingMutator wraps a closed-remote local mutator.
func NewRecordingMutator() *RecordingMutator {
	return &RecordingMutator{Inner: mutate.NewLocal(), Fail: map[string]error{}}
}

// Apply implements mutate.Mutator.
func (m *RecordingMutator) Apply(ctx context.Context, req mutate.Request) (*migration.Remote, error) {
	if m.OnApply != nil {
		m.OnApply(req.Node.Name)
	}
	m.mu.Lock()
	m.calls = append(m.calls, req.Node.Name)
	err := m.Fail[req.Node.Name]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Inner.Apply(ctx, req)
}

// Calls returns the node names passed to Apply, in order.
func (m *RecordingMutator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
