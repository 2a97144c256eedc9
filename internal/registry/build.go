package registry

import (
	"context"
	"fmt"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/migrator"
)

// Build validates the model and instantiates its migrators in configuration
// order.
func (r *Registry) Build(ctx context.Context, model *config.Model, deps Deps) ([]migrator.Migrator, error) {
	if err := r.Validate(model); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	out := make([]migrator.Migrator, 0, len(model.Migrators))
	for _, mc := range model.Migrators {
		cfg := migrator.Config{
			Settings: migrator.Settings{
				Name:     mc.Name,
				Quota:    mc.Quota,
				Ordering: mc.Ordering,
				Deadline: mc.Deadline,
			},
			Relevance: migrator.Relevance{
				Requires: mc.Relevance.Requires,
				Include:  mc.Relevance.Include,
				Exclude:  mc.Relevance.Exclude,
			},
			Mutator: deps.Mutator,
		}
		for _, p := range mc.Piggyback {
			step, err := r.steps[p.Kind](ctx, p.Arguments, deps.Converter)
			if err != nil {
				return nil, fmt.Errorf("migrator %s: piggyback %s: %w", mc.Name, p.Kind, err)
			}
			cfg.Piggyback = append(cfg.Piggyback, step)
		}

		m, err := r.kinds[mc.Kind](ctx, cfg, mc.Arguments, deps.Converter)
		if err != nil {
			return nil, fmt.Errorf("migrator %s: %w", mc.Name, err)
		}
		logger.Debug("Built migrator", "migrator", mc.Name, "kind", mc.Kind, "piggyback", len(cfg.Piggyback))
		out = append(out, m)
	}
	return out, nil
}
