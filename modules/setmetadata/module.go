package setmetadata

import (
	"context"
	"errors"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/registry"
)

// Kind is the configuration label of this step.
const Kind = "set_metadata"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `piggyback "set_metadata"` block.
type Input struct {
	Key   string `cfg:"key"`
	Value string `cfg:"value"`
}

// Build decodes the block into a SetMetadata step.
func Build(ctx context.Context, args map[string]hcl.Expression, conv config.Converter) (migrator.Step, error) {
	var in Input
	if err := conv.DecodeBody(ctx, &in, args); err != nil {
		return nil, err
	}
	if in.Key == "" {
		return nil, errors.New("key must not be empty")
	}
	return migrator.SetMetadata{Key: in.Key, Value: in.Value}, nil
}

// Register registers the builder with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(Kind, Build)
}
