package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter decodes raw argument bodies into the Go structs declared by
// modules.
type Converter interface {
	// DecodeBody evaluates args and stores them in the fields of target, a
	// pointer to a struct whose fields carry `cfg:"name"` tags. Arguments
	// without a matching field are an error; fields without an argument keep
	// their current value.
	DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression) error
}
