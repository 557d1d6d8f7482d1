package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cogs/internal/binder"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

func loadManifest(t *testing.T, reg *registry.Registry, e *env.Env, src string) error {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL([]byte(src), "test.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return LoadFile(reg, e, file.Body, "test.hcl")
}

const greetManifest = `
setting "default-name" {
  type        = string
  default     = "world"
  description = "name used when none is given"
}

task "greet" {
  description = "greet someone politely"
  handler     = "OnRunGreet"

  arg "name" {
    type    = string
    default = "friend"
  }

  option "shout" {
    key         = "s"
    description = "print the greeting loudly"
  }

  option "times" {
    key         = "n"
    type        = number
    default     = 1
    value_name  = "N"
    description = "repeat the greeting"
  }
}
`

func TestLoadFileRegistersTaskAndSetting(t *testing.T) {
	reg := registry.New()
	e := env.New()

	var gotName string
	var gotShout bool
	reg.RegisterHandler("OnRunGreet", func(ctx context.Context, call *registry.Call) error {
		var err error
		if gotName, err = call.String("name"); err != nil {
			return err
		}
		gotShout, err = call.Bool("shout")
		return err
	})

	require.NoError(t, loadManifest(t, reg, e, greetManifest))

	task, ok := reg.Task("greet")
	require.True(t, ok)
	assert.Equal(t, "greet someone politely", task.Hint)
	require.Len(t, task.Args, 1)
	require.Len(t, task.Opts, 2)
	assert.True(t, task.Opts[0].Toggle())
	assert.Equal(t, byte('s'), task.Opts[0].Key)
	assert.False(t, task.Opts[1].Toggle())

	s, ok := e.Setting("default-name")
	require.True(t, ok)
	require.NoError(t, s.Resolve(e, nil))
	got, _ := e.GetString("default-name")
	assert.Equal(t, "world", got)

	inv, err := binder.Bind(context.Background(), reg, e, []string{"greet", "ada", "--shout"})
	require.NoError(t, err)
	require.NoError(t, inv.Task.Invoke(context.Background(), inv.Call))
	assert.Equal(t, "ada", gotName)
	assert.True(t, gotShout)

	times, err := inv.Call.Int("times")
	require.NoError(t, err)
	assert.Equal(t, int64(1), times)
}

func TestLoadFileTypeMismatchInDefault(t *testing.T) {
	reg := registry.New()
	reg.RegisterHandler("OnRunX", func(ctx context.Context, call *registry.Call) error { return nil })

	err := loadManifest(t, reg, env.New(), `
task "x" {
  handler = "OnRunX"
  arg "n" {
    type    = number
    default = "not-a-number"
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default")
}

func TestLoadFileUnknownHandler(t *testing.T) {
	err := loadManifest(t, registry.New(), env.New(), `
task "ghost" {
  handler = "OnRunGhost"
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OnRunGhost")
}

func TestLoadFileHandlerAndFactoryConflict(t *testing.T) {
	err := loadManifest(t, registry.New(), env.New(), `
task "both" {
  handler = "A"
  factory = "B"
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both handler and factory")
}

func TestLoadFilePluralNotLast(t *testing.T) {
	reg := registry.New()
	reg.RegisterHandler("OnRunX", func(ctx context.Context, call *registry.Call) error { return nil })

	err := loadManifest(t, reg, env.New(), `
task "x" {
  handler = "OnRunX"
  arg "files" {
    type   = string
    plural = true
  }
  arg "dest" {
    type = string
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plural")
}

func TestLoadFileFactoryTask(t *testing.T) {
	reg := registry.New()
	e := env.New()

	ran := false
	reg.RegisterFactory("NewEcho", func(call *registry.Call) (registry.Runner, error) {
		word, err := call.String("word")
		if err != nil {
			return nil, err
		}
		return runnerFunc(func(ctx context.Context) error {
			ran = word == "ping"
			return nil
		}), nil
	})

	require.NoError(t, loadManifest(t, reg, e, `
task "echo" {
  factory = "NewEcho"
  arg "word" {
    type = string
  }
}
`))

	inv, err := binder.Bind(context.Background(), reg, e, []string{"echo", "ping"})
	require.NoError(t, err)
	require.NoError(t, inv.Task.Invoke(context.Background(), inv.Call))
	assert.True(t, ran)
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestLoadWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.hcl"), []byte(greetManifest), 0o644))

	reg := registry.New()
	reg.RegisterHandler("OnRunGreet", func(ctx context.Context, call *registry.Call) error { return nil })
	e := env.New()

	require.NoError(t, Load(context.Background(), reg, e, dir))
	_, ok := reg.Task("greet")
	assert.True(t, ok)
	_, ok = e.Setting("default-name")
	assert.True(t, ok)
}
