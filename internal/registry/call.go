package registry

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/cogs/internal/env"
)

// Call is the consumable form of a bound invocation: the validated
// positional values, the keyword map covering every declared argument and
// option, and the configuration engine for task bodies that read settings.
type Call struct {
	// Positional holds the argument values in declaration order; a plural
	// argument contributes one tuple value at the end.
	Positional []cty.Value
	// Args maps argument name to bound value.
	Args map[string]cty.Value
	// Options maps option name to bound value. Toggles are cty booleans,
	// repeatable options are tuples in encounter order.
	Options map[string]cty.Value
	// Env is the resolved configuration engine for this run.
	Env *env.Env
}

// Value returns the bound value for a declared argument or option name.
func (c *Call) Value(name string) (cty.Value, bool) {
	if v, ok := c.Args[name]; ok {
		return v, true
	}
	v, ok := c.Options[name]
	return v, ok
}

// String reads a bound value as a Go string.
func (c *Call) String(name string) (string, error) {
	var out string
	err := c.read(name, &out)
	return out, err
}

// Int reads a bound value as a Go int64.
func (c *Call) Int(name string) (int64, error) {
	var out int64
	err := c.read(name, &out)
	return out, err
}

// Bool reads a bound value as a Go bool. Absent toggles bind false, so
// this never fails for a declared toggle option.
func (c *Call) Bool(name string) (bool, error) {
	var out bool
	err := c.read(name, &out)
	return out, err
}

// Strings reads a bound plural value as a slice of Go strings, in the
// order the tokens appeared.
func (c *Call) Strings(name string) ([]string, error) {
	val, ok := c.Value(name)
	if !ok {
		return nil, fmt.Errorf("no bound value named %q", name)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("bound value %q is not a sequence", name)
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		var s string
		if err := gocty.FromCtyValue(elem, &s); err != nil {
			return nil, fmt.Errorf("bound value %q: %w", name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Call) read(name string, target any) error {
	val, ok := c.Value(name)
	if !ok {
		return fmt.Errorf("no bound value named %q", name)
	}
	if err := gocty.FromCtyValue(val, target); err != nil {
		return fmt.Errorf("bound value %q: %w", name, err)
	}
	return nil
}
