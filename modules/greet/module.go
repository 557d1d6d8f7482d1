// Package greet is the demonstration task pack: a single hello task
// backed by the default-name setting.
package greet

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const helloDoc = `greet someone (if not specified, the current user)

The name falls back to the default-name setting, then to the login name
of the current user.`

// OnRunHello is the handler for the hello task.
func OnRunHello(ctx context.Context, call *registry.Call) error {
	name, err := call.String("name")
	if err != nil {
		return err
	}
	if name == "" {
		name, _ = call.Env.GetString("default-name")
	}
	if name == "" {
		u, uerr := user.Current()
		if uerr != nil {
			return registry.Failf("no name given and the current user is unknown")
		}
		name = u.Username
	}
	fmt.Fprintf(os.Stdout, "Hello, %s!\n", capitalize(name))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Register registers the pack's handler, task and setting.
func (m *Module) Register(r *registry.Registry, e *env.Env) error {
	r.RegisterHandler("OnRunHello", OnRunHello)

	task, err := registry.NewTask("hello", helloDoc,
		[]descriptor.Argument{
			descriptor.OptionalArg("name", descriptor.String, cty.StringVal("")),
		},
		nil,
		OnRunHello)
	if err != nil {
		return err
	}
	if err := r.AddTask(task); err != nil {
		return err
	}

	return e.AddSetting(env.String("default-name",
		"name used by hello when none is given", ""))
}
