package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/cogs/internal/binder"
	"github.com/vk/cogs/internal/catalog"
	"github.com/vk/cogs/internal/ctxlog"
	"github.com/vk/cogs/internal/dispatch"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/help"
)

// Run executes one invocation: split global options, load extension
// manifests, resolve configuration, bind the task and dispatch it. The
// file/environment reads all happen here, once, before dispatch.
func (a *App) Run(ctx context.Context, args []string) error {
	globals, err := binder.SplitGlobals(args)
	if err != nil {
		return err
	}

	modulesPath := globals.ModulesPath
	explicit := modulesPath != ""
	if !explicit {
		modulesPath = os.Getenv(env.VarPrefix + "MODULES_PATH")
		explicit = modulesPath != ""
	}
	if modulesPath != "" {
		if _, statErr := os.Stat(modulesPath); statErr != nil {
			if explicit {
				return fmt.Errorf("modules path %s: %w", modulesPath, statErr)
			}
		} else if err := catalog.Load(ctx, a.reg, a.env, modulesPath); err != nil {
			return err
		}
	}

	if err := a.env.Resolve(ctx, env.Sources{
		ConfigPath: globals.ConfigPath,
		Globals:    globals.Assignments,
	}); err != nil {
		return err
	}

	level, _ := a.env.GetString("log-level")
	format, _ := a.env.GetString("log-format")
	logger := newLogger(level, format, a.errW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration resolved.", "keys", len(a.env.Keys()))

	if len(globals.Rest) == 0 {
		fmt.Fprintf(a.outW, "usage: cogs [global-options] <task> [arguments] [options]\n\ntasks:\n")
		help.List(a.outW, a.reg.Tasks())
		return nil
	}

	inv, err := binder.Bind(ctx, a.reg, a.env, globals.Rest)
	if err != nil {
		return err
	}
	ctx = ctxlog.WithTask(ctx, inv.Task.Name)
	return dispatch.Invoke(ctx, inv)
}
