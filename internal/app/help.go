package app

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/help"
	"github.com/vk/cogs/internal/registry"
)

const helpDoc = `show task documentation

Without a task name, lists every available task with its one-line hint.
With a task name, prints that task's usage line, documentation and
options.`

// registerHelp installs the help built-in. It is an ordinary task produced
// by the registry from the set of registered tasks.
func (a *App) registerHelp() error {
	task, err := registry.NewTask("help", helpDoc,
		[]descriptor.Argument{
			descriptor.OptionalArg("task", descriptor.String, cty.StringVal("")),
		},
		nil,
		func(ctx context.Context, call *registry.Call) error {
			name, err := call.String("task")
			if err != nil {
				return err
			}
			if name == "" {
				help.List(a.outW, a.reg.Tasks())
				return nil
			}
			t, ok := a.reg.Task(name)
			if !ok {
				return registry.Failf("task not found: %s", name)
			}
			help.Render(a.outW, t)
			return nil
		})
	if err != nil {
		return err
	}
	return a.reg.AddTask(task)
}
