// Package fs exposes the filesystem and process shims as tasks: cp, mv,
// rm and sh.
package fs

import (
	"context"
	"os"
	"strings"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
	"github.com/vk/cogs/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunCopy copies one file.
func OnRunCopy(ctx context.Context, call *registry.Call) error {
	src, err := call.String("src")
	if err != nil {
		return err
	}
	dst, err := call.String("dst")
	if err != nil {
		return err
	}
	if err := shell.Copy(src, dst); err != nil {
		return registry.Failf("cp: %v", err)
	}
	return nil
}

// OnRunMove moves one file.
func OnRunMove(ctx context.Context, call *registry.Call) error {
	src, err := call.String("src")
	if err != nil {
		return err
	}
	dst, err := call.String("dst")
	if err != nil {
		return err
	}
	if err := shell.Move(src, dst); err != nil {
		return registry.Failf("mv: %v", err)
	}
	return nil
}

// OnRunRemove removes every given path.
func OnRunRemove(ctx context.Context, call *registry.Call) error {
	paths, err := call.Strings("path")
	if err != nil {
		return err
	}
	force, err := call.Bool("force")
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := shell.Remove(p, force); err != nil {
			return registry.Failf("rm: %v", err)
		}
	}
	return nil
}

// OnRunShell joins the given words into one command line and runs it
// through the system shell.
func OnRunShell(ctx context.Context, call *registry.Call) error {
	words, err := call.Strings("command")
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return registry.Failf("sh: no command given")
	}
	if err := shell.Exec(ctx, strings.Join(words, " "), os.Stdout, os.Stderr); err != nil {
		return registry.Failf("sh: %v", err)
	}
	return nil
}

// Register registers the pack's handlers and tasks.
func (m *Module) Register(r *registry.Registry, e *env.Env) error {
	r.RegisterHandler("OnRunCopy", OnRunCopy)
	r.RegisterHandler("OnRunMove", OnRunMove)
	r.RegisterHandler("OnRunRemove", OnRunRemove)
	r.RegisterHandler("OnRunShell", OnRunShell)

	tasks := []struct {
		name string
		doc  string
		args []descriptor.Argument
		opts []descriptor.Option
		fn   registry.Handler
	}{
		{
			name: "cp",
			doc:  "copy a file",
			args: []descriptor.Argument{
				descriptor.Arg("src", descriptor.String),
				descriptor.Arg("dst", descriptor.String),
			},
			fn: OnRunCopy,
		},
		{
			name: "mv",
			doc:  "move a file",
			args: []descriptor.Argument{
				descriptor.Arg("src", descriptor.String),
				descriptor.Arg("dst", descriptor.String),
			},
			fn: OnRunMove,
		},
		{
			name: "rm",
			doc:  "remove files or directories",
			args: []descriptor.Argument{
				descriptor.Variadic("path", descriptor.String),
			},
			opts: []descriptor.Option{
				descriptor.Flag("force", 'f', "ignore missing paths"),
			},
			fn: OnRunRemove,
		},
		{
			name: "sh",
			doc:  "run a command through the system shell",
			args: []descriptor.Argument{
				descriptor.Variadic("command", descriptor.String),
			},
			fn: OnRunShell,
		},
	}

	for _, def := range tasks {
		task, err := registry.NewTask(def.name, def.doc, def.args, def.opts, def.fn)
		if err != nil {
			return err
		}
		if err := r.AddTask(task); err != nil {
			return err
		}
	}
	return nil
}
