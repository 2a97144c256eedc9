package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/inmemorystore"
)

// ErrFlakySave is returned by FlakyStore while it is failing.
var ErrFlakySave = errors.New("flaky save")

// FlakyStore is an in-memory store whose first Failures saves fail.
type FlakyStore struct {
	*inmemorystore.Store

	mu       sync.Mutex
	Failures int
	attempts int
}

// NewFlakyStore returns a store failing the first failures saves.
func NewFlakyStore(failures int) *FlakyStore {
	return &FlakyStore{Store: inmemorystore.New(), Failures: failures}
}

// Save implements nodestore.Store.
func (s *FlakyStore) Save(ctx context.Context, g *graph.Graph, changed []string) error {
	s.mu.Lock()
	s.attempts++
	failing := s.attempts <= s.Failures
	s.mu.Unlock()
	if failing {
		return ErrFlakySave
	}
	return s.Store.Save(ctx, g, changed)
}

// Attempts returns the number of Save calls, failed ones included.
func (s *FlakyStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
