// Package versionbump registers the migrator kind that moves packages to
// their newest upstream version.
package versionbump

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/registry"
)

// Kind is the configuration label of this migrator kind.
const Kind = "version"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Build decodes the arguments body and returns a version migrator.
func Build(ctx context.Context, cfg migrator.Config, args map[string]hcl.Expression, conv config.Converter) (migrator.Migrator, error) {
	var in registry.Arguments
	if err := conv.DecodeBody(ctx, &in, args); err != nil {
		return nil, err
	}
	in.Apply(&cfg)
	return migrator.NewVersion(cfg)
}

// Register registers the builder with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind, Build)
}
