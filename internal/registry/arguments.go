package registry

import "github.com/vk/tickgraph/internal/migrator"

// Arguments are the `arguments` understood by the built-in migrator kinds.
type Arguments struct {
	ObjectVersion  int               `cfg:"migrator_object_version"`
	MaxOpen        int               `cfg:"max_open"`
	AllowBadStates []string          `cfg:"allow_bad_states"`
	UIDFields      map[string]string `cfg:"uid_fields"`
}

// Apply copies the arguments onto cfg.
func (a Arguments) Apply(cfg *migrator.Config) {
	cfg.ObjectVersion = a.ObjectVersion
	cfg.MaxOpen = a.MaxOpen
	cfg.AllowBadStates = a.AllowBadStates
	cfg.UIDFields = a.UIDFields
}
