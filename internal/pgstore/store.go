// Package pgstore keeps the canonical graph in PostgreSQL: one JSONB row per
// package and one row per edge.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vk/tickgraph/internal/dag"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/nodestore"
)

const upsertNodeSQL = `
INSERT INTO graph_nodes (name, data, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

// Store implements nodestore.Store using PostgreSQL via pgx.
//
// The first Save after Load (or on an empty database) writes the whole
// topology; later saves upsert only the changed rows.
type Store struct {
	db *pgxpool.Pool

	mu          sync.Mutex
	topologySet bool
}

var _ nodestore.Store = (*Store)(nil)

// New creates a Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Open connects to dsn and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	s := New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: create schema: %w", err)
	}
	return s, nil
}

// Load implements nodestore.Store.
func (s *Store) Load(ctx context.Context) (*graph.Graph, error) {
	doc := rowDocument{Nodes: make(map[string]json.RawMessage)}

	rows, err := s.db.Query(ctx, `SELECT name, data FROM graph_nodes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("pgstore: scan node: %w", err)
		}
		doc.Nodes[name] = data
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: rows nodes: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, nodestore.ErrNotFound
	}

	edges, err := s.db.Query(ctx, `SELECT from_name, to_name FROM graph_edges ORDER BY from_name, to_name`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: query edges: %w", err)
	}
	defer edges.Close()
	for edges.Next() {
		var e dag.Edge
		if err := edges.Scan(&e.From, &e.To); err != nil {
			return nil, fmt.Errorf("pgstore: scan edge: %w", err)
		}
		doc.Edges = append(doc.Edges, e)
	}
	if err := edges.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: rows edges: %w", err)
	}

	g, err := doc.graph()
	if err != nil {
		return nil, fmt.Errorf("pgstore: %w", err)
	}
	s.mu.Lock()
	s.topologySet = false
	s.mu.Unlock()
	return g, nil
}

// Save implements nodestore.Store.
func (s *Store) Save(ctx context.Context, g *graph.Graph, changed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := changed
	if !s.topologySet {
		names = g.Names()
	}
	rows, err := nodeRows(g, names)
	if err != nil {
		return fmt.Errorf("pgstore: %w", err)
	}
	if len(rows) == 0 && s.topologySet {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertNodeSQL, r.name, r.data)
	}
	if !s.topologySet {
		batch.Queue(`DELETE FROM graph_nodes WHERE NOT (name = ANY($1))`, names)
		batch.Queue(`DELETE FROM graph_edges`)
		for _, e := range g.Topology().Edges() {
			batch.Queue(`INSERT INTO graph_edges (from_name, to_name) VALUES ($1, $2)`, e.From, e.To)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("pgstore: write: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: commit: %w", err)
	}
	s.topologySet = true
	return nil
}

// Close implements nodestore.Store.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
