package env

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/cogs/internal/ctxlog"
	"github.com/vk/cogs/internal/descriptor"
)

// FileName is the config file name searched for in every location.
const FileName = "cogs.conf"

// VarPrefix is prepended to the derived environment-variable names.
const VarPrefix = "COGS_"

// Assignment is one `--name=value` or bare `--name` global option from the
// command line. The bare toggle form carries the raw text "true".
type Assignment struct {
	Name string
	Raw  string
}

// Sources describes where one resolution run reads from. The zero value
// plus defaults() gives the production behavior; tests substitute their
// own roots and environment.
type Sources struct {
	// ConfigPath, when set by --config, replaces the whole search list.
	ConfigPath string
	// Etc, Prefix, Home and WorkDir anchor the four default config file
	// locations, in ascending precedence.
	Etc     string
	Prefix  string
	Home    string
	WorkDir string
	// LookupEnv reads one environment variable. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Globals are the command-line global options, highest precedence,
	// applied in the order given.
	Globals []Assignment
}

func (s Sources) withDefaults() Sources {
	if s.Etc == "" {
		s.Etc = "/etc"
	}
	if s.Prefix == "" {
		s.Prefix = "/usr/local"
	}
	if s.Home == "" {
		s.Home, _ = os.UserHomeDir()
	}
	if s.WorkDir == "" {
		s.WorkDir = "."
	}
	if s.LookupEnv == nil {
		s.LookupEnv = os.LookupEnv
	}
	return s
}

// configFiles returns the file paths to read, lowest precedence first.
func (s Sources) configFiles() []string {
	if s.ConfigPath != "" {
		return []string{s.ConfigPath}
	}
	paths := []string{
		filepath.Join(s.Etc, FileName),
		filepath.Join(s.Prefix, "etc", FileName),
	}
	if s.Home != "" {
		paths = append(paths, filepath.Join(s.Home, ".cogs", FileName))
	}
	return append(paths, filepath.Join(s.WorkDir, FileName))
}

// VarName derives the environment-variable name for a setting identifier.
func VarName(setting string) string {
	return VarPrefix + strings.ReplaceAll(strings.ToUpper(setting), "-", "_")
}

// Resolve runs the full source chain, lowest precedence first: compiled-in
// defaults, config files, environment variables, command-line globals.
// Each source that carries a setting re-triggers that setting's resolver,
// so writes a resolver makes are immediately visible to later resolvers in
// the same run.
func (e *Env) Resolve(ctx context.Context, src Sources) error {
	logger := ctxlog.FromContext(ctx)
	src = src.withDefaults()

	for _, s := range e.settings {
		if err := s.Resolve(e, nil); err != nil {
			return &ResolveError{Msg: fmt.Sprintf("default for setting %s", s.Name), Err: err}
		}
	}
	logger.Debug("Setting defaults resolved.", "settings", len(e.settings))

	for _, path := range src.configFiles() {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) && src.ConfigPath == "" {
				continue
			}
			return &ResolveError{Msg: fmt.Sprintf("config file %s", path), Err: err}
		}
		entries, perr := parseConfig(path, f)
		f.Close()
		if perr != nil {
			return perr
		}
		if err := e.applyFile(path, entries); err != nil {
			return err
		}
		logger.Debug("Config file applied.", "path", path, "entries", len(entries))
	}

	for _, s := range e.settings {
		raw, ok := src.LookupEnv(VarName(s.Name))
		if !ok {
			continue
		}
		if err := s.Resolve(e, &raw); err != nil {
			return &ResolveError{Msg: fmt.Sprintf("environment variable %s", VarName(s.Name)), Err: err}
		}
		logger.Debug("Environment override applied.", "setting", s.Name)
	}

	for _, g := range src.Globals {
		name := descriptor.Normalize(g.Name)
		s, ok := e.byName[name]
		if !ok {
			return &ResolveError{Msg: fmt.Sprintf("unknown global option --%s", name)}
		}
		raw := g.Raw
		if err := s.Resolve(e, &raw); err != nil {
			return &ResolveError{Msg: fmt.Sprintf("option --%s", name), Err: err}
		}
		logger.Debug("Command-line override applied.", "setting", name)
	}

	return nil
}

// applyFile routes each parsed entry to its setting's resolver. A key with
// no registered setting is a fatal parse error naming the file and line.
func (e *Env) applyFile(path string, entries []entry) error {
	for _, ent := range entries {
		name := descriptor.Normalize(ent.key)
		s, ok := e.byName[name]
		if !ok {
			return &ParseError{File: path, Line: ent.line, Msg: fmt.Sprintf("unknown setting %q", ent.key)}
		}
		raw := ent.raw
		if err := s.Resolve(e, &raw); err != nil {
			return &ParseError{File: path, Line: ent.line, Msg: err.Error()}
		}
	}
	return nil
}
