package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/filestore"
	"github.com/vk/tickgraph/internal/graph"
	"github.com/vk/tickgraph/internal/nodestore"
	"github.com/vk/tickgraph/internal/pgstore"
	"github.com/vk/tickgraph/internal/s3store"
)

// openStore returns the injected store or opens the configured backend.
func (a *App) openStore(ctx context.Context) (nodestore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.cfg.Store {
	case StorePostgres:
		s, err := pgstore.Open(ctx, a.cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreS3:
		s, err := s3store.New(a.cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return filestore.New(a.cfg.GraphPath), nil
	}
}

// loadGraph seeds the store when asked to, then loads the canonical graph.
func (a *App) loadGraph(ctx context.Context, store nodestore.Store) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	if a.cfg.SeedPath != "" {
		seed, err := filestore.New(a.cfg.SeedPath).Load(ctx)
		if errors.Is(err, nodestore.ErrNotFound) {
			return nil, fmt.Errorf("seed file %s does not exist", a.cfg.SeedPath)
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed: %w", err)
		}
		if err := store.Save(ctx, seed, nil); err != nil {
			return nil, fmt.Errorf("writing seed: %w", err)
		}
		logger.Info("🌱 Seeded graph store", "path", a.cfg.SeedPath, "nodes", seed.Len())
	}

	g, err := store.Load(ctx)
	if errors.Is(err, nodestore.ErrNotFound) {
		return nil, fmt.Errorf("no graph stored yet; run once with a seed file: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	return g, nil
}
