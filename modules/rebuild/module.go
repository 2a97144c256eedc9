package rebuild

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/registry"
)

// Kind is the configuration label of this migrator kind.
const Kind = "rebuild"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Build decodes the arguments body and returns a rebuild migrator.
func Build(ctx context.Context, cfg migrator.Config, args map[string]hcl.Expression, conv config.Converter) (migrator.Migrator, error) {
	var in registry.Arguments
	if err := conv.DecodeBody(ctx, &in, args); err != nil {
		return nil, err
	}
	in.Apply(&cfg)
	return migrator.NewRebuild(cfg)
}

// Register registers the builder with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind, Build)
}
