package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
)

// Module is the interface task packs implement to contribute their
// handlers, tasks and settings to a run.
type Module interface {
	Register(r *Registry, e *env.Env) error
}

// Registry holds every registered task and named handler for a single run.
type Registry struct {
	tasks  map[string]*Task
	order  []string
	byName map[string]*registered
}

// registered is a named Go handler that extension manifests may bind to,
// in either invocation form.
type registered struct {
	fn      Handler
	factory Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tasks:  make(map[string]*Task),
		byName: make(map[string]*registered),
	}
}

// AddTask registers a task. Two tasks normalizing to the same identifier
// is a fatal registration error.
func (r *Registry) AddTask(t *Task) error {
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("task %s already registered", t.Name)
	}
	slog.Debug("Registering task.", "name", t.Name, "kind", t.kind)
	r.tasks[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Task looks up a task by name, normalized the same way as registration.
func (r *Registry) Task(name string) (*Task, bool) {
	t, ok := r.tasks[descriptor.Normalize(name)]
	return t, ok
}

// Tasks returns every registered task sorted by name.
func (r *Registry) Tasks() []*Task {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	out := make([]*Task, len(names))
	for i, n := range names {
		out[i] = r.tasks[n]
	}
	return out
}

// Names returns every registered task name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// RegisterHandler registers a Go function under a handler name for
// manifests to bind. It panics if the name is taken; two Go packages
// claiming the same handler name is a programmer error.
func (r *Registry) RegisterHandler(name string, fn Handler) {
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering handler.", "name", name)
	r.byName[name] = &registered{fn: fn}
}

// RegisterFactory registers a construct-then-run factory under a handler
// name for manifests to bind.
func (r *Registry) RegisterFactory(name string, f Factory) {
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering factory.", "name", name)
	r.byName[name] = &registered{factory: f}
}

// Handler returns the registered function handler for name.
func (r *Registry) Handler(name string) (Handler, bool) {
	reg, ok := r.byName[name]
	if !ok || reg.fn == nil {
		return nil, false
	}
	return reg.fn, true
}

// Factory returns the registered factory for name.
func (r *Registry) Factory(name string) (Factory, bool) {
	reg, ok := r.byName[name]
	if !ok || reg.factory == nil {
		return nil, false
	}
	return reg.factory, true
}
