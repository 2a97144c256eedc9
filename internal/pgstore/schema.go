package pgstore

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS graph_nodes (
    name       TEXT PRIMARY KEY,
    data       JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS graph_edges (
    from_name TEXT NOT NULL REFERENCES graph_nodes(name) ON DELETE CASCADE,
    to_name   TEXT NOT NULL REFERENCES graph_nodes(name) ON DELETE CASCADE,
    PRIMARY KEY (from_name, to_name)
);

CREATE INDEX IF NOT EXISTS idx_graph_edges_to ON graph_edges(to_name);
`

// CreateSchema creates the graph_nodes and graph_edges tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the graph tables.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS graph_edges, graph_nodes CASCADE;`)
	return err
}
