// Package app wires the registry, configuration engine, binder and
// dispatcher into one runnable application instance.
package app

import (
	"fmt"
	"io"

	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

// App encapsulates the application's dependencies and lifecycle: one
// registry, one configuration engine, one run.
type App struct {
	outW io.Writer
	errW io.Writer
	reg  *registry.Registry
	env  *env.Env
}

// New builds an application instance and registers the given task packs,
// or the core packs when none are passed. Registration failures are fatal
// load-time errors.
func New(outW, errW io.Writer, modules ...registry.Module) (*App, error) {
	a := &App{
		outW: outW,
		errW: errW,
		reg:  registry.New(),
		env:  env.New(),
	}

	for _, s := range builtinSettings() {
		if err := a.env.AddSetting(s); err != nil {
			return nil, fmt.Errorf("register built-in settings: %w", err)
		}
	}

	if len(modules) == 0 {
		modules = coreModules()
	}
	for _, mod := range modules {
		if err := mod.Register(a.reg, a.env); err != nil {
			return nil, fmt.Errorf("register module: %w", err)
		}
	}

	if err := a.registerHelp(); err != nil {
		return nil, err
	}
	return a, nil
}

// builtinSettings are the tool's own knobs, resolved through the same
// engine as everything else.
func builtinSettings() []*env.Setting {
	return []*env.Setting{
		env.Enum("log-level", "minimum level for diagnostic logging", "info",
			"debug", "info", "warn", "error"),
		env.Enum("log-format", "diagnostic log output format", "text",
			"text", "json"),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.reg
}

// Env returns the application's configuration engine. This is primarily
// for testing.
func (a *App) Env() *env.Env {
	return a.env
}
