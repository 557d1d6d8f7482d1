// Package binder matches raw command-line tokens against a task's
// descriptors and produces a fully bound invocation. Binding either
// succeeds completely or fails with a single user-facing error; a
// partially bound state never escapes.
package binder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/cogs/internal/ctxlog"
	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

// maxSuggestDistance bounds how far an unknown task name may be from a
// registered one before the hint is dropped as noise.
const maxSuggestDistance = 3

// Error is a binder failure: unknown task, bad token shape, missing or
// excess arguments, or a checker rejection. When Task is set the reporter
// prints that task's usage line alongside the message.
type Error struct {
	Task       *registry.Task
	Msg        string
	Suggestion string
}

func (e *Error) Error() string {
	return e.Msg
}

func errf(t *registry.Task, format string, args ...any) *Error {
	return &Error{Task: t, Msg: fmt.Sprintf(format, args...)}
}

// Invocation is the bound result for one task, ready for dispatch.
type Invocation struct {
	Task *registry.Task
	Call *registry.Call
}

// Bind resolves tokens (task name first, global options already consumed)
// against the registry and configuration engine.
func Bind(ctx context.Context, reg *registry.Registry, e *env.Env, tokens []string) (*Invocation, error) {
	logger := ctxlog.FromContext(ctx)
	if len(tokens) == 0 {
		return nil, errf(nil, "no task given")
	}

	name := descriptor.Normalize(tokens[0])
	task, ok := reg.Task(name)
	if !ok {
		berr := errf(nil, "unknown task %q", name)
		if s := closestName(name, reg.Names()); s != "" {
			berr.Suggestion = s
		}
		return nil, berr
	}
	logger.Debug("Task resolved.", "task", task.Name)

	positionals, optTokens, err := splitTokens(task, tokens[1:])
	if err != nil {
		return nil, err
	}

	call := &registry.Call{
		Args:    make(map[string]cty.Value, len(task.Args)),
		Options: make(map[string]cty.Value, len(task.Opts)),
		Env:     e,
	}
	if err := bindArgs(task, positionals, call); err != nil {
		return nil, err
	}
	if err := bindOptions(task, optTokens, e, call); err != nil {
		return nil, err
	}
	logger.Debug("Invocation bound.", "task", task.Name,
		"positionals", len(call.Positional), "options", len(call.Options))

	return &Invocation{Task: task, Call: call}, nil
}

// optToken is one option occurrence found during the token split.
type optToken struct {
	opt *descriptor.Option
	// raw is the supplied value text; unset for toggles.
	raw    string
	hasRaw bool
	// display is the form the user typed, for error messages.
	display string
}

// splitTokens separates option tokens from positional tokens, resolving
// each option reference and collecting its value. Order among positionals
// is preserved. A literal "--" ends option recognition.
func splitTokens(task *registry.Task, tokens []string) ([]string, []optToken, error) {
	var positionals []string
	var opts []optToken
	optionsDone := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if optionsDone || tok == "-" || len(tok) < 2 || tok[0] != '-' {
			positionals = append(positionals, tok)
			continue
		}
		if tok == "--" {
			optionsDone = true
			continue
		}

		var opt *descriptor.Option
		var inline, display string
		var hasInline bool
		if tok[1] == '-' {
			name := tok[2:]
			if cut, rest, found := strings.Cut(name, "="); found {
				name, inline, hasInline = cut, rest, true
			}
			name = descriptor.Normalize(name)
			display = "--" + name
			opt = findLong(task, name)
		} else {
			if len(tok) != 2 {
				return nil, nil, errf(task, "unknown option %q", tok)
			}
			display = tok
			opt = findShort(task, tok[1])
		}
		if opt == nil {
			return nil, nil, errf(task, "unknown option %s", display)
		}

		occ := optToken{opt: opt, display: display}
		switch {
		case opt.Toggle():
			if hasInline {
				return nil, nil, errf(task, "option %s takes no value", display)
			}
		case hasInline:
			occ.raw, occ.hasRaw = inline, true
		default:
			if i+1 >= len(tokens) {
				return nil, nil, errf(task, "option %s requires a value", display)
			}
			i++
			occ.raw, occ.hasRaw = tokens[i], true
		}
		opts = append(opts, occ)
	}
	return positionals, opts, nil
}

// bindArgs matches positional tokens to the task's argument descriptors
// in order. The plural descriptor, always last, consumes every remaining
// token as an ordered sequence.
func bindArgs(task *registry.Task, tokens []string, call *registry.Call) error {
	next := 0
	for _, arg := range task.Args {
		if arg.Plural {
			vals := make([]cty.Value, 0, len(tokens)-next)
			for ; next < len(tokens); next++ {
				val, err := checkToken(task, arg.Check, "argument", arg.Name, tokens[next])
				if err != nil {
					return err
				}
				vals = append(vals, val)
			}
			seq := cty.EmptyTupleVal
			if len(vals) > 0 {
				seq = cty.TupleVal(vals)
			}
			call.Args[arg.Name] = seq
			call.Positional = append(call.Positional, seq)
			continue
		}
		if next < len(tokens) {
			val, err := checkToken(task, arg.Check, "argument", arg.Name, tokens[next])
			if err != nil {
				return err
			}
			next++
			call.Args[arg.Name] = val
			call.Positional = append(call.Positional, val)
			continue
		}
		if arg.Default == nil {
			return errf(task, "missing argument <%s>", arg.Name)
		}
		call.Args[arg.Name] = *arg.Default
		call.Positional = append(call.Positional, *arg.Default)
	}
	if next < len(tokens) {
		return errf(task, "unexpected argument %q", tokens[next])
	}
	return nil
}

// bindOptions applies the collected option occurrences, then fills in
// every absent option: toggles bind false, setting-backed options fall
// back to the engine's resolved value, and the descriptor default comes
// last.
func bindOptions(task *registry.Task, occurrences []optToken, e *env.Env, call *registry.Call) error {
	seen := make(map[string]bool)
	plural := make(map[string][]cty.Value)
	for _, occ := range occurrences {
		opt := occ.opt
		if seen[opt.Name] && !opt.Plural {
			return errf(task, "option --%s given more than once", opt.Name)
		}
		seen[opt.Name] = true
		if opt.Toggle() {
			call.Options[opt.Name] = cty.True
			continue
		}
		val, err := checkToken(task, opt.Check, "option", occ.display, occ.raw)
		if err != nil {
			return err
		}
		if opt.Plural {
			plural[opt.Name] = append(plural[opt.Name], val)
			continue
		}
		call.Options[opt.Name] = val
	}
	for name, vals := range plural {
		call.Options[name] = cty.TupleVal(vals)
	}

	for _, opt := range task.Opts {
		if _, bound := call.Options[opt.Name]; bound {
			continue
		}
		if opt.Toggle() {
			call.Options[opt.Name] = cty.False
			continue
		}
		if opt.FromSetting {
			if val, ok := e.Get(opt.Name); ok {
				call.Options[opt.Name] = val
				continue
			}
		}
		switch {
		case opt.Default != nil:
			call.Options[opt.Name] = *opt.Default
		case opt.Plural:
			call.Options[opt.Name] = cty.EmptyTupleVal
		default:
			call.Options[opt.Name] = cty.NullVal(cty.DynamicPseudoType)
		}
	}
	return nil
}

// checkToken runs a descriptor checker over one raw token. A
// ValidationError is recovered into a binder error naming the offender;
// any other failure is a defect in the checker and propagates as-is.
func checkToken(task *registry.Task, check descriptor.Checker, what, name, raw string) (cty.Value, error) {
	val, err := check(raw)
	if err == nil {
		return val, nil
	}
	var verr *descriptor.ValidationError
	if errors.As(err, &verr) {
		return cty.NilVal, errf(task, "invalid value %q for %s %s: %s", raw, what, name, verr.Reason)
	}
	return cty.NilVal, fmt.Errorf("checker for %s %s: %w", what, name, err)
}

func findLong(task *registry.Task, name string) *descriptor.Option {
	for i := range task.Opts {
		if task.Opts[i].Name == name {
			return &task.Opts[i]
		}
	}
	return nil
}

func findShort(task *registry.Task, key byte) *descriptor.Option {
	for i := range task.Opts {
		if task.Opts[i].Key == key {
			return &task.Opts[i]
		}
	}
	return nil
}

// closestName returns the registered name nearest to the unknown one, or
// empty when nothing is close enough to be a useful hint.
func closestName(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
