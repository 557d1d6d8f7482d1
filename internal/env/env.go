package env

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/cogs/internal/descriptor"
)

// Sentinel errors for misuse of the value store. All three are programmer
// errors in task or extension code and are fatal when they surface.
var (
	ErrDuplicateKey   = errors.New("key already exists")
	ErrUnknownKey     = errors.New("key does not exist")
	ErrScopeUnderflow = errors.New("configuration scope stack is empty")
)

// Setting is a named configuration parameter. Its resolver is invoked once
// per source occurrence: with nil raw for the compiled-in default pass,
// and with the raw source text for every higher-precedence source that
// carries the setting. The resolver performs coercion and validation and
// writes the result into the Env itself, so a resolver may populate more
// than one key.
type Setting struct {
	Name    string
	Hint    string
	Help    string
	Resolve func(e *Env, raw *string) error
}

// NewSetting builds a setting with a normalized identifier and the
// hint/help split applied to doc.
func NewSetting(name, doc string, resolve func(e *Env, raw *string) error) *Setting {
	hint, help := descriptor.SplitDoc(doc)
	return &Setting{
		Name:    descriptor.Normalize(name),
		Hint:    hint,
		Help:    help,
		Resolve: resolve,
	}
}

// String builds a setting holding a plain string value.
func String(name, doc, def string) *Setting {
	s := NewSetting(name, doc, nil)
	s.Resolve = func(e *Env, raw *string) error {
		if raw == nil {
			e.Put(s.Name, cty.StringVal(def))
			return nil
		}
		e.Put(s.Name, cty.StringVal(*raw))
		return nil
	}
	return s
}

// Int builds a setting holding a whole number.
func Int(name, doc string, def int64) *Setting {
	s := NewSetting(name, doc, nil)
	s.Resolve = func(e *Env, raw *string) error {
		if raw == nil {
			e.Put(s.Name, cty.NumberIntVal(def))
			return nil
		}
		val, err := descriptor.Int(*raw)
		if err != nil {
			return fmt.Errorf("setting %s: %w", s.Name, err)
		}
		e.Put(s.Name, val)
		return nil
	}
	return s
}

// Bool builds a setting holding a boolean. The bare global-option form
// (--name with no value) arrives as the raw text "true".
func Bool(name, doc string, def bool) *Setting {
	s := NewSetting(name, doc, nil)
	s.Resolve = func(e *Env, raw *string) error {
		if raw == nil {
			e.Put(s.Name, cty.BoolVal(def))
			return nil
		}
		val, err := descriptor.Bool(*raw)
		if err != nil {
			return fmt.Errorf("setting %s: %w", s.Name, err)
		}
		e.Put(s.Name, val)
		return nil
	}
	return s
}

// Enum builds a string setting restricted to the given choices.
func Enum(name, doc, def string, choices ...string) *Setting {
	check := descriptor.Enum(choices...)
	s := NewSetting(name, doc, nil)
	s.Resolve = func(e *Env, raw *string) error {
		if raw == nil {
			e.Put(s.Name, cty.StringVal(def))
			return nil
		}
		val, err := check(*raw)
		if err != nil {
			return fmt.Errorf("setting %s: %w", s.Name, err)
		}
		e.Put(s.Name, val)
		return nil
	}
	return s
}

// scope is one saved snapshot on the override stack.
type scope struct {
	keys  []string
	saved map[string]cty.Value
}

// Env is the configuration engine state for one run.
type Env struct {
	settings []*Setting
	byName   map[string]*Setting

	order  []string
	values map[string]cty.Value

	scopes []scope
}

// New creates an empty engine with no settings and no values.
func New() *Env {
	return &Env{
		byName: make(map[string]*Setting),
		values: make(map[string]cty.Value),
	}
}

// AddSetting registers a setting. Two settings normalizing to the same
// identifier is a fatal registration error.
func (e *Env) AddSetting(s *Setting) error {
	if _, exists := e.byName[s.Name]; exists {
		return fmt.Errorf("setting %s already registered", s.Name)
	}
	e.byName[s.Name] = s
	e.settings = append(e.settings, s)
	return nil
}

// Setting looks up a registered setting by normalized name.
func (e *Env) Setting(name string) (*Setting, bool) {
	s, ok := e.byName[descriptor.Normalize(name)]
	return s, ok
}

// Settings returns the registered settings in registration order.
func (e *Env) Settings() []*Setting {
	return e.settings
}

// Add registers new key/value entries. It fails if any key already exists;
// on failure nothing is written.
func (e *Env) Add(pairs map[string]cty.Value) error {
	for key := range pairs {
		if _, exists := e.values[key]; exists {
			return fmt.Errorf("add %s: %w", key, ErrDuplicateKey)
		}
	}
	for _, key := range sortedKeys(pairs) {
		e.order = append(e.order, key)
		e.values[key] = pairs[key]
	}
	return nil
}

// Set overwrites existing entries. It fails if any key does not exist; on
// failure nothing is written.
func (e *Env) Set(pairs map[string]cty.Value) error {
	for key := range pairs {
		if _, exists := e.values[key]; !exists {
			return fmt.Errorf("set %s: %w", key, ErrUnknownKey)
		}
	}
	for key, val := range pairs {
		e.values[key] = val
	}
	return nil
}

// Put writes one key regardless of whether it exists yet. It is the write
// primitive resolvers use, since the same resolver runs for the default
// pass and for every overriding source.
func (e *Env) Put(key string, val cty.Value) {
	if _, exists := e.values[key]; !exists {
		e.order = append(e.order, key)
	}
	e.values[key] = val
}

// Get returns the current value of a key.
func (e *Env) Get(key string) (cty.Value, bool) {
	val, ok := e.values[key]
	return val, ok
}

// Keys returns every stored key in first-written order.
func (e *Env) Keys() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// GetString reads a key as a Go string.
func (e *Env) GetString(key string) (string, error) {
	var out string
	err := e.read(key, &out)
	return out, err
}

// GetInt reads a key as a Go int64.
func (e *Env) GetInt(key string) (int64, error) {
	var out int64
	err := e.read(key, &out)
	return out, err
}

// GetBool reads a key as a Go bool.
func (e *Env) GetBool(key string) (bool, error) {
	var out bool
	err := e.read(key, &out)
	return out, err
}

func (e *Env) read(key string, target any) error {
	val, ok := e.values[key]
	if !ok {
		return fmt.Errorf("get %s: %w", key, ErrUnknownKey)
	}
	if err := gocty.FromCtyValue(val, target); err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return nil
}

// Push snapshots the current values of the given keys, then overwrites
// them. Every key must already exist. Each Push must be matched by exactly
// one Pop before the process exits.
func (e *Env) Push(overrides map[string]cty.Value) error {
	for key := range overrides {
		if _, exists := e.values[key]; !exists {
			return fmt.Errorf("push %s: %w", key, ErrUnknownKey)
		}
	}
	frame := scope{saved: make(map[string]cty.Value, len(overrides))}
	for _, key := range sortedKeys(overrides) {
		frame.keys = append(frame.keys, key)
		frame.saved[key] = e.values[key]
		e.values[key] = overrides[key]
	}
	e.scopes = append(e.scopes, frame)
	return nil
}

// Pop restores the most recent snapshot, discarding the overridden
// values. Popping with an empty stack is a usage error in the calling
// task or extension code.
func (e *Env) Pop() error {
	if len(e.scopes) == 0 {
		return ErrScopeUnderflow
	}
	frame := e.scopes[len(e.scopes)-1]
	e.scopes = e.scopes[:len(e.scopes)-1]
	for _, key := range frame.keys {
		e.values[key] = frame.saved[key]
	}
	return nil
}

// ScopeDepth returns the number of unmatched pushes.
func (e *Env) ScopeDepth() int {
	return len(e.scopes)
}

// Scoped runs fn with the given overrides in effect and restores the
// previous values on every exit path, including when fn fails or panics.
func (e *Env) Scoped(overrides map[string]cty.Value, fn func() error) error {
	if err := e.Push(overrides); err != nil {
		return err
	}
	defer func() {
		// Push succeeded, so the matching Pop cannot underflow.
		_ = e.Pop()
	}()
	return fn()
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
