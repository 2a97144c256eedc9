package inmemorystore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/nodestore"
)

// Store keeps the last saved graph as a JSON document, so that what Load
// returns never aliases what the caller keeps mutating.
//
// Every Save is recorded; tests use Saves to check the persistence hook ran.
type Store struct {
	mu    sync.Mutex
	doc   []byte
	saves [][]string
}

var _ nodestore.Store = (*Store)(nil)

// New creates an empty store. Load fails with nodestore.ErrNotFound until a
// graph has been saved or seeded.
func New() *Store {
	return &Store{}
}

// Seed stores g as the current graph.
func (s *Store) Seed(g *graph.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = data
	return nil
}

// Load implements nodestore.Store.
func (s *Store) Load(ctx context.Context) (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, nodestore.ErrNotFound
	}
	g := graph.New()
	if err := json.Unmarshal(s.doc, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Save implements nodestore.Store. The whole graph is rewritten.
func (s *Store) Save(ctx context.Context, g *graph.Graph, changed []string) error {
	if err := s.Seed(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, slices.Clone(changed))
	return nil
}

// Saves returns the changed-node lists of every Save so far.
func (s *Store) Saves() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saves)
}

// Close implements nodestore.Store.
func (s *Store) Close() error {
	return nil
}
