package app

import (
	"github.com/vk/tickgraph/internal/registry"
	"github.com/vk/tickgraph/modules/rebuild"
	"github.com/vk/tickgraph/modules/setmetadata"
	"github.com/vk/tickgraph/modules/versionbump"
)

// coreModules is the definitive list of all modules that are compiled into
// the tickgraph binary.
var coreModules = []registry.Module{
	&rebuild.Module{},
	&versionbump.Module{},
	&setmetadata.Module{},
}
