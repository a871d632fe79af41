package app

import (
	"github.com/vk/cmdgrid/internal/registry"
	"github.com/vk/cmdgrid/modules/calc"
	"github.com/vk/cmdgrid/modules/echo"
)

// coreModules is the definitive list of all modules that are compiled into
// the cmdgrid binary.
func coreModules(cfg *Config) []registry.Module {
	return []registry.Module{
		&calc.Module{ManifestDir: cfg.ManifestPath},
		&echo.Module{},
	}
}
