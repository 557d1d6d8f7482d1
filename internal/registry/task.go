package registry

import (
	"context"
	"fmt"

	"github.com/vk/cogs/internal/descriptor"
)

// Kind selects the invocation strategy of a task, fixed at registration.
type Kind int

const (
	// FunctionTask calls a handler function directly with the bound call.
	FunctionTask Kind = iota
	// ConstructedTask builds an instance from the bound call, then runs
	// its zero-argument entry point.
	ConstructedTask
)

// Handler is the body of a function-derived task.
type Handler func(ctx context.Context, call *Call) error

// Runner is the zero-argument entry point of a constructed task instance.
type Runner interface {
	Run(ctx context.Context) error
}

// Factory builds a task instance from the bound arguments and options.
type Factory func(call *Call) (Runner, error)

// Task is one named, invocable command. Immutable after registration.
type Task struct {
	Name string
	Hint string
	Help string
	Args []descriptor.Argument
	Opts []descriptor.Option

	kind    Kind
	handler Handler
	factory Factory
}

// NewTask builds a function-derived task. The name is normalized and doc
// is split into hint and help. Structural problems in the descriptors are
// registration errors.
func NewTask(name, doc string, args []descriptor.Argument, opts []descriptor.Option, h Handler) (*Task, error) {
	t, err := newTask(name, doc, args, opts)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("task %s: nil handler", t.Name)
	}
	t.kind = FunctionTask
	t.handler = h
	return t, nil
}

// NewConstructedTask builds a construct-then-run task.
func NewConstructedTask(name, doc string, args []descriptor.Argument, opts []descriptor.Option, f Factory) (*Task, error) {
	t, err := newTask(name, doc, args, opts)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("task %s: nil factory", t.Name)
	}
	t.kind = ConstructedTask
	t.factory = f
	return t, nil
}

func newTask(name, doc string, args []descriptor.Argument, opts []descriptor.Option) (*Task, error) {
	normalized := descriptor.Normalize(name)
	if normalized == "" {
		return nil, fmt.Errorf("task has no name")
	}
	if err := descriptor.ValidateArgs(args); err != nil {
		return nil, fmt.Errorf("task %s: %w", normalized, err)
	}
	if err := descriptor.ValidateOpts(opts); err != nil {
		return nil, fmt.Errorf("task %s: %w", normalized, err)
	}
	hint, help := descriptor.SplitDoc(doc)
	return &Task{
		Name: normalized,
		Hint: hint,
		Help: help,
		Args: args,
		Opts: opts,
	}, nil
}

// Kind returns the invocation strategy chosen at registration.
func (t *Task) Kind() Kind {
	return t.kind
}

// Invoke runs the task body with a bound call. The strategy was resolved
// once at registration and is never re-inspected here beyond the tag.
func (t *Task) Invoke(ctx context.Context, call *Call) error {
	switch t.kind {
	case FunctionTask:
		return t.handler(ctx, call)
	case ConstructedTask:
		runner, err := t.factory(call)
		if err != nil {
			return err
		}
		return runner.Run(ctx)
	default:
		return fmt.Errorf("task %s: unknown invocation kind %d", t.Name, t.kind)
	}
}

// Failure is an expected, task-reported failure condition. The dispatcher
// prints it as a concise user message without internal detail and exits
// nonzero, unlike unexpected defects which surface with full diagnostics.
type Failure struct {
	Msg string
}

func (f *Failure) Error() string {
	return f.Msg
}

// Failf signals an expected task failure.
func Failf(format string, args ...any) error {
	return &Failure{Msg: fmt.Sprintf(format, args...)}
}
