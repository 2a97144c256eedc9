package registry

import (
	"fmt"
	"strings"

	"github.com/vk/tickgraph/internal/config"
)

// Validate checks that every kind referenced by the model is registered,
// reporting all problems at once.
func (r *Registry) Validate(model *config.Model) error {
	var errs []string
	for _, m := range model.Migrators {
		if _, ok := r.kinds[m.Kind]; !ok {
			errs = append(errs, fmt.Sprintf("migrator '%s': unknown kind '%s' (known: %s)", m.Name, m.Kind, strings.Join(r.Kinds(), ", ")))
		}
		for _, p := range m.Piggyback {
			if _, ok := r.steps[p.Kind]; !ok {
				errs = append(errs, fmt.Sprintf("migrator '%s': unknown piggyback step '%s' (known: %s)", m.Name, p.Kind, strings.Join(r.Steps(), ", ")))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
