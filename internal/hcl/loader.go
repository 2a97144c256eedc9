package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/tickgraph/internal/config"
	"github.com/vk/tickgraph/internal/ctxlog"
	"github.com/vk/tickgraph/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges their blocks into
// one model. Migrators keep file order; files are read in lexical order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started", "pathCount", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, nil, fmt.Errorf("finding configuration files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files", "files", files)

	model := &config.Model{Run: config.DefaultRun}
	parser := hclparse.NewParser()
	sawRun := false
	seen := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, rb := range root.Runs {
			if sawRun {
				return nil, nil, fmt.Errorf("%s: only one run block is allowed", file)
			}
			sawRun = true
			run, err := translateRun(rb)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: run: %w", file, err)
			}
			model.Run = run
		}
		for _, mb := range root.Migrators {
			if prev, dup := seen[mb.Name]; dup {
				return nil, nil, fmt.Errorf("%s: migrator %q already defined in %s", file, mb.Name, prev)
			}
			seen[mb.Name] = file
			mig, err := translateMigrator(mb)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: migrator %q: %w", file, mb.Name, err)
			}
			model.Migrators = append(model.Migrators, mig)
		}
	}

	logger.Debug("HCL loading complete", "migrators", len(model.Migrators), "deadline", model.Run.Deadline, "apiBudget", model.Run.APIBudget)
	return model, NewConverter(), nil
}
