// Package filestore keeps the canonical graph in a local JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/nodestore"
)

// Store reads and writes one graph document. Every Save rewrites the whole
// file through a temporary file and a rename, so readers never observe a
// partial write.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ nodestore.Store = (*Store)(nil)

// New returns a store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load implements nodestore.Store.
func (s *Store) Load(ctx context.Context) (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nodestore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	g := graph.New()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return g, nil
}

// Save implements nodestore.Store.
func (s *Store) Save(ctx context.Context, g *graph.Graph, changed []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Close implements nodestore.Store.
func (s *Store) Close() error {
	return nil
}
