package descriptor

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Argument describes one positional parameter of a task.
type Argument struct {
	Name    string
	Check   Checker
	Default *cty.Value
	Plural  bool
}

// Mandatory reports whether the argument must be supplied on the command
// line. An argument without a default is mandatory.
func (a Argument) Mandatory() bool {
	return a.Default == nil && !a.Plural
}

// Arg declares a mandatory positional argument.
func Arg(name string, check Checker) Argument {
	return Argument{Name: name, Check: check}
}

// OptionalArg declares a positional argument with a default value.
func OptionalArg(name string, check Checker, def cty.Value) Argument {
	return Argument{Name: name, Check: check, Default: &def}
}

// Variadic declares the trailing plural argument, which consumes every
// remaining positional token.
func Variadic(name string, check Checker) Argument {
	return Argument{Name: name, Check: check, Plural: true}
}

// Option describes one named option of a task.
type Option struct {
	Name    string
	Key     byte // one-character short form, 0 for none
	Check   Checker
	Default *cty.Value
	Plural  bool
	// ValueName is the placeholder shown in help output for valued options.
	ValueName string
	Hint      string
	// FromSetting wires the option to the same-named setting in the
	// configuration engine: when the option is absent from the command
	// line, its bound value falls back to the engine's resolved value
	// before the descriptor default.
	FromSetting bool
}

// Toggle reports whether the option is a boolean switch taking no value.
func (o Option) Toggle() bool {
	return o.Check == nil
}

// Flag declares a boolean toggle option. Absent binds false, present binds true.
func Flag(name string, key byte, hint string) Option {
	return Option{Name: name, Key: key, Hint: hint}
}

// Opt declares a valued option with a default.
func Opt(name string, key byte, check Checker, def cty.Value, valueName, hint string) Option {
	return Option{Name: name, Key: key, Check: check, Default: &def, ValueName: valueName, Hint: hint}
}

// Repeatable declares a valued option that may appear multiple times and
// accumulates its values in encounter order.
func Repeatable(name string, key byte, check Checker, valueName, hint string) Option {
	return Option{Name: name, Key: key, Check: check, Plural: true, ValueName: valueName, Hint: hint}
}

// FromEnv returns a copy of the option wired to the configuration engine.
func (o Option) FromEnv() Option {
	o.FromSetting = true
	return o
}

// ValidateArgs checks the structural rules for a task's positional
// descriptors. Violations are registration errors.
func ValidateArgs(args []Argument) error {
	seen := make(map[string]struct{}, len(args))
	optionalSeen := false
	for i, a := range args {
		if a.Name == "" {
			return fmt.Errorf("argument %d has no name", i)
		}
		if a.Check == nil {
			return fmt.Errorf("argument %q has no checker", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate argument %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.Plural && i != len(args)-1 {
			return fmt.Errorf("plural argument %q must be the last argument", a.Name)
		}
		if a.Plural && a.Default != nil {
			return fmt.Errorf("plural argument %q cannot carry a default", a.Name)
		}
		if a.Default != nil {
			optionalSeen = true
		} else if optionalSeen && !a.Plural {
			return fmt.Errorf("mandatory argument %q follows an optional argument", a.Name)
		}
	}
	return nil
}

// ValidateOpts checks the structural rules for a task's option descriptors.
func ValidateOpts(opts []Option) error {
	names := make(map[string]struct{}, len(opts))
	keys := make(map[byte]string, len(opts))
	for _, o := range opts {
		if o.Name == "" {
			return fmt.Errorf("option has no name")
		}
		if _, dup := names[o.Name]; dup {
			return fmt.Errorf("duplicate option --%s", o.Name)
		}
		names[o.Name] = struct{}{}
		if o.Key != 0 {
			if other, dup := keys[o.Key]; dup {
				return fmt.Errorf("options --%s and --%s share the key -%c", other, o.Name, o.Key)
			}
			keys[o.Key] = o.Name
		}
		if o.Toggle() && (o.Default != nil || o.Plural) {
			return fmt.Errorf("toggle option --%s cannot carry a default or be repeatable", o.Name)
		}
		if o.Plural && o.Default != nil {
			return fmt.Errorf("repeatable option --%s cannot carry a default", o.Name)
		}
	}
	return nil
}
