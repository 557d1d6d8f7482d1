package binder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

func nop(ctx context.Context, call *registry.Call) error {
	return nil
}

func newRegistry(t *testing.T, tasks ...*registry.Task) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, task := range tasks {
		require.NoError(t, r.AddTask(task))
	}
	return r
}

func mustTask(t *testing.T, name string, args []descriptor.Argument, opts []descriptor.Option) *registry.Task {
	t.Helper()
	task, err := registry.NewTask(name, "", args, opts, nop)
	require.NoError(t, err)
	return task
}

func TestBindFactorial(t *testing.T) {
	task := mustTask(t, "factorial",
		[]descriptor.Argument{descriptor.Arg("n", descriptor.Int)}, nil)
	r := newRegistry(t, task)

	t.Run("valid argument binds and computes", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"factorial", "5"})
		require.NoError(t, err)

		n, err := inv.Call.Int("n")
		require.NoError(t, err)
		result := int64(1)
		for i := int64(2); i <= n; i++ {
			result *= i
		}
		assert.Equal(t, int64(120), result)
	})

	t.Run("invalid argument names n and never binds", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"factorial", "abc"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "n")
		assert.Contains(t, berr.Msg, "abc")
		assert.Same(t, task, berr.Task)
	})
}

func TestBindUnknownTask(t *testing.T) {
	r := newRegistry(t, mustTask(t, "deploy", nil, nil))

	_, err := Bind(context.Background(), r, env.New(), []string{"depoly"})
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Msg, "depoly")
	assert.Equal(t, "deploy", berr.Suggestion)

	_, err = Bind(context.Background(), r, env.New(), []string{"completely-unrelated"})
	require.ErrorAs(t, err, &berr)
	assert.Empty(t, berr.Suggestion)
}

func TestBindTaskNameNormalized(t *testing.T) {
	r := newRegistry(t, mustTask(t, "build-all", nil, nil))
	inv, err := Bind(context.Background(), r, env.New(), []string{"Build_All"})
	require.NoError(t, err)
	assert.Equal(t, "build-all", inv.Task.Name)
}

func TestBindOptionalArgDefaults(t *testing.T) {
	task := mustTask(t, "greet", []descriptor.Argument{
		descriptor.Arg("who", descriptor.String),
		descriptor.OptionalArg("greeting", descriptor.String, cty.StringVal("hello")),
	}, nil)
	r := newRegistry(t, task)

	inv, err := Bind(context.Background(), r, env.New(), []string{"greet", "ada"})
	require.NoError(t, err)
	got, _ := inv.Call.String("greeting")
	assert.Equal(t, "hello", got)
	require.Len(t, inv.Call.Positional, 2)

	inv, err = Bind(context.Background(), r, env.New(), []string{"greet", "ada", "hi"})
	require.NoError(t, err)
	got, _ = inv.Call.String("greeting")
	assert.Equal(t, "hi", got)
}

func TestBindMissingArgument(t *testing.T) {
	r := newRegistry(t, mustTask(t, "cp", []descriptor.Argument{
		descriptor.Arg("src", descriptor.String),
		descriptor.Arg("dst", descriptor.String),
	}, nil))

	_, err := Bind(context.Background(), r, env.New(), []string{"cp", "one"})
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Msg, "missing argument <dst>")
}

func TestBindUnexpectedArgument(t *testing.T) {
	r := newRegistry(t, mustTask(t, "version", nil, nil))

	_, err := Bind(context.Background(), r, env.New(), []string{"version", "extra"})
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Msg, `unexpected argument "extra"`)
}

func TestBindPluralArgument(t *testing.T) {
	task := mustTask(t, "rm", []descriptor.Argument{
		descriptor.Variadic("path", descriptor.String),
	}, nil)
	r := newRegistry(t, task)

	t.Run("consumes every remaining token in order", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"rm", "a", "b", "c"})
		require.NoError(t, err)
		paths, err := inv.Call.Strings("path")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, paths)
	})

	t.Run("zero tokens binds an empty sequence", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"rm"})
		require.NoError(t, err)
		paths, err := inv.Call.Strings("path")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})
}

func TestBindToggleOption(t *testing.T) {
	task := mustTask(t, "build", nil, []descriptor.Option{
		descriptor.Flag("verbose", 'v', "talk more"),
	})
	r := newRegistry(t, task)

	t.Run("absent binds false", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"build"})
		require.NoError(t, err)
		v, err := inv.Call.Bool("verbose")
		require.NoError(t, err)
		assert.False(t, v)
	})

	t.Run("long form binds true", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"build", "--verbose"})
		require.NoError(t, err)
		v, _ := inv.Call.Bool("verbose")
		assert.True(t, v)
	})

	t.Run("short form binds true", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"build", "-v"})
		require.NoError(t, err)
		v, _ := inv.Call.Bool("verbose")
		assert.True(t, v)
	})

	t.Run("toggle rejects a value", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"build", "--verbose=yes"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "takes no value")
	})

	t.Run("duplicate toggle rejected", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"build", "--verbose", "-v"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "more than once")
	})
}

func TestBindValuedOption(t *testing.T) {
	task := mustTask(t, "build", nil, []descriptor.Option{
		descriptor.Opt("jobs", 'j', descriptor.Int, cty.NumberIntVal(1), "N", "parallel jobs"),
	})
	r := newRegistry(t, task)

	for name, args := range map[string][]string{
		"equals form":    {"build", "--jobs=4"},
		"space form":     {"build", "--jobs", "4"},
		"short key form": {"build", "-j", "4"},
	} {
		t.Run(name, func(t *testing.T) {
			inv, err := Bind(context.Background(), r, env.New(), args)
			require.NoError(t, err)
			jobs, err := inv.Call.Int("jobs")
			require.NoError(t, err)
			assert.Equal(t, int64(4), jobs)
		})
	}

	t.Run("absent takes the default", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"build"})
		require.NoError(t, err)
		jobs, _ := inv.Call.Int("jobs")
		assert.Equal(t, int64(1), jobs)
	})

	t.Run("missing value", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"build", "--jobs"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "requires a value")
	})

	t.Run("checker failure names the option", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"build", "--jobs=lots"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "--jobs")
		assert.Contains(t, berr.Msg, "lots")
	})

	t.Run("duplicate non-repeatable rejected", func(t *testing.T) {
		_, err := Bind(context.Background(), r, env.New(), []string{"build", "--jobs=1", "--jobs=2"})
		var berr *Error
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Msg, "more than once")
	})
}

func TestBindRepeatableOption(t *testing.T) {
	task := mustTask(t, "build", nil, []descriptor.Option{
		descriptor.Repeatable("tag", 't', descriptor.String, "TAG", "add a tag"),
	})
	r := newRegistry(t, task)

	t.Run("accumulates in encounter order", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(),
			[]string{"build", "--tag=one", "-t", "two", "--tag", "three"})
		require.NoError(t, err)
		tags, err := inv.Call.Strings("tag")
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, tags)
	})

	t.Run("absent binds an empty sequence", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"build"})
		require.NoError(t, err)
		tags, err := inv.Call.Strings("tag")
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestBindUnknownOption(t *testing.T) {
	r := newRegistry(t, mustTask(t, "build", nil, nil))

	_, err := Bind(context.Background(), r, env.New(), []string{"build", "--mystery"})
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Msg, "--mystery")
}

func TestBindDoubleDashEndsOptions(t *testing.T) {
	task := mustTask(t, "sh", []descriptor.Argument{
		descriptor.Variadic("command", descriptor.String),
	}, nil)
	r := newRegistry(t, task)

	inv, err := Bind(context.Background(), r, env.New(), []string{"sh", "--", "ls", "-la"})
	require.NoError(t, err)
	words, err := inv.Call.Strings("command")
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-la"}, words)
}

func TestBindSettingBackedOption(t *testing.T) {
	task := mustTask(t, "serve", nil, []descriptor.Option{
		descriptor.Opt("port", 'p', descriptor.Int, cty.NumberIntVal(8000), "PORT", "listen port").FromEnv(),
	})
	r := newRegistry(t, task)

	t.Run("command line beats the engine", func(t *testing.T) {
		e := env.New()
		e.Put("port", cty.NumberIntVal(9000))
		inv, err := Bind(context.Background(), r, e, []string{"serve", "--port=7000"})
		require.NoError(t, err)
		port, _ := inv.Call.Int("port")
		assert.Equal(t, int64(7000), port)
	})

	t.Run("engine beats the descriptor default", func(t *testing.T) {
		e := env.New()
		e.Put("port", cty.NumberIntVal(9000))
		inv, err := Bind(context.Background(), r, e, []string{"serve"})
		require.NoError(t, err)
		port, _ := inv.Call.Int("port")
		assert.Equal(t, int64(9000), port)
	})

	t.Run("descriptor default when the engine is silent", func(t *testing.T) {
		inv, err := Bind(context.Background(), r, env.New(), []string{"serve"})
		require.NoError(t, err)
		port, _ := inv.Call.Int("port")
		assert.Equal(t, int64(8000), port)
	})
}

func TestBindNoTask(t *testing.T) {
	_, err := Bind(context.Background(), registry.New(), env.New(), nil)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Nil(t, berr.Task)
}
