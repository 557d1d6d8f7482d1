package binder

import (
	"strings"

	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
)

// Globals is the result of splitting the leading global options off the
// argument vector, before any task name is recognized.
type Globals struct {
	// Assignments feed the configuration engine as its highest-precedence
	// source, in the order given.
	Assignments []env.Assignment
	// ConfigPath is the --config override, empty when absent.
	ConfigPath string
	// ModulesPath is the --modules-path override, empty when absent.
	ModulesPath string
	// Rest starts at the task name.
	Rest []string
}

// SplitGlobals consumes leading --name=value and --name tokens. The bare
// form is the toggle spelling and carries the raw text "true"; --debug is
// shorthand for --log-level=debug. --config and --modules-path are
// consumed here rather than routed to a setting, and may take their value
// as the following token.
func SplitGlobals(args []string) (*Globals, error) {
	g := &Globals{}
	i := 0
	for ; i < len(args); i++ {
		tok := args[i]
		if !strings.HasPrefix(tok, "--") || tok == "--" {
			break
		}
		name, val, hasVal := strings.Cut(tok[2:], "=")
		name = descriptor.Normalize(name)
		switch name {
		case "config", "modules-path":
			if !hasVal {
				if i+1 >= len(args) {
					return nil, errf(nil, "global option --%s requires a path", name)
				}
				i++
				val = args[i]
			}
			if val == "" {
				return nil, errf(nil, "global option --%s requires a path", name)
			}
			if name == "config" {
				g.ConfigPath = val
			} else {
				g.ModulesPath = val
			}
		case "debug":
			if hasVal {
				return nil, errf(nil, "global option --debug takes no value")
			}
			g.Assignments = append(g.Assignments, env.Assignment{Name: "log-level", Raw: "debug"})
		default:
			if name == "" {
				return nil, errf(nil, "malformed global option %q", tok)
			}
			if !hasVal {
				val = "true"
			}
			g.Assignments = append(g.Assignments, env.Assignment{Name: name, Raw: val})
		}
	}
	g.Rest = args[i:]
	return g, nil
}
