package app

import (
	"github.com/vk/cogs/internal/registry"
	"github.com/vk/cogs/modules/fs"
	"github.com/vk/cogs/modules/greet"
)

// coreModules are the task packs registered when the caller does not
// supply its own set.
func coreModules() []registry.Module {
	return []registry.Module{
		&greet.Module{},
		&fs.Module{},
	}
}
