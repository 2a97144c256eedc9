package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/migrator"
	"github.com/vk/tickgraph/internal/mutate"
)

// Module is the interface that every module must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Deps are the runtime services handed to builders.
type Deps struct {
	Mutator   mutate.Mutator
	Converter config.Converter
}

// MigratorBuilder turns a configured migrator into a running one. cfg holds
// the options common to every kind; args is the undecoded `arguments` body.
type MigratorBuilder func(ctx context.Context, cfg migrator.Config, args map[string]hcl.Expression, conv config.Converter) (migrator.Migrator, error)

// StepBuilder turns a configured `piggyback` block into a step.
type StepBuilder func(ctx context.Context, args map[string]hcl.Expression, conv config.Converter) (migrator.Step, error)

// Registry holds the builders registered for a single application instance.
type Registry struct {
	kinds map[string]MigratorBuilder
	steps map[string]StepBuilder
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		kinds: make(map[string]MigratorBuilder),
		steps: make(map[string]StepBuilder),
	}
}

// RegisterKind registers the builder for a migrator kind.
func (r *Registry) RegisterKind(kind string, b MigratorBuilder) {
	if _, exists := r.kinds[kind]; exists {
		panic(fmt.Sprintf("migrator kind '%s' already registered", kind))
	}
	slog.Debug("Registering migrator kind", "kind", kind)
	r.kinds[kind] = b
}

// RegisterStep registers the builder for a piggyback step kind.
func (r *Registry) RegisterStep(kind string, b StepBuilder) {
	if _, exists := r.steps[kind]; exists {
		panic(fmt.Sprintf("piggyback step '%s' already registered", kind))
	}
	slog.Debug("Registering piggyback step", "kind", kind)
	r.steps[kind] = b
}

// Kinds returns the registered migrator kinds, sorted.
func (r *Registry) Kinds() []string {
	return sortedKeys(r.kinds)
}

// Steps returns the registered piggyback step kinds, sorted.
func (r *Registry) Steps() []string {
	return sortedKeys(r.steps)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
