// Package catalog loads extension manifests: HCL files declaring tasks
// and settings whose bodies are registered Go handlers. The manifest is
// the declarative half of an extension; the handler names bind it to code
// at load time, and any mismatch is a fatal registration error.
package catalog

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/cogs/internal/ctxlog"
	"github.com/vk/cogs/internal/descriptor"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/fsutil"
	"github.com/vk/cogs/internal/registry"
)

// Load walks dir for .hcl manifests and registers every declared task and
// setting.
func Load(ctx context.Context, reg *registry.Registry, e *env.Env, dir string) error {
	logger := ctxlog.FromContext(ctx)
	paths, err := fsutil.FindFilesByExtension(dir, ".hcl")
	if err != nil {
		return fmt.Errorf("walk modules path %s: %w", dir, err)
	}
	if len(paths) == 0 {
		logger.Warn("No manifest files found in modules path.", "path", dir)
		return nil
	}

	parser := hclparse.NewParser()
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return fmt.Errorf("parse manifest %s: %w", path, diags)
		}
		if err := LoadFile(reg, e, file.Body, path); err != nil {
			return err
		}
		logger.Debug("Manifest loaded.", "path", path)
	}
	logger.Debug("Catalog loaded.", "manifests", len(paths))
	return nil
}

// LoadFile registers the contents of a single parsed manifest body. Split
// out from Load so tests can feed inline HCL.
func LoadFile(reg *registry.Registry, e *env.Env, body hcl.Body, path string) error {
	var m Manifest
	if diags := gohcl.DecodeBody(body, nil, &m); diags.HasErrors() {
		return fmt.Errorf("decode manifest %s: %w", path, diags)
	}
	for _, sb := range m.Settings {
		setting, err := translateSetting(sb)
		if err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
		if err := e.AddSetting(setting); err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	for _, tb := range m.Tasks {
		task, err := translateTask(reg, tb)
		if err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
		if err := reg.AddTask(task); err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	return nil
}

// translateTask converts one task block into a registered Task, binding
// its handler or factory by name.
func translateTask(reg *registry.Registry, tb *TaskBlock) (*registry.Task, error) {
	args := make([]descriptor.Argument, 0, len(tb.Args))
	for _, ab := range tb.Args {
		arg, err := translateArg(tb.Name, ab)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	opts := make([]descriptor.Option, 0, len(tb.Opts))
	for _, ob := range tb.Opts {
		opt, err := translateOption(tb.Name, ob)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	switch {
	case tb.Handler != "" && tb.Factory != "":
		return nil, fmt.Errorf("task %q declares both handler and factory", tb.Name)
	case tb.Handler != "":
		fn, ok := reg.Handler(tb.Handler)
		if !ok {
			return nil, fmt.Errorf("task %q: handler %q is not registered", tb.Name, tb.Handler)
		}
		return registry.NewTask(tb.Name, tb.Description, args, opts, fn)
	case tb.Factory != "":
		factory, ok := reg.Factory(tb.Factory)
		if !ok {
			return nil, fmt.Errorf("task %q: factory %q is not registered", tb.Name, tb.Factory)
		}
		return registry.NewConstructedTask(tb.Name, tb.Description, args, opts, factory)
	default:
		return nil, fmt.Errorf("task %q declares neither handler nor factory", tb.Name)
	}
}

func translateArg(task string, ab *ArgBlock) (descriptor.Argument, error) {
	ty, err := constraint(ab.Type)
	if err != nil {
		return descriptor.Argument{}, fmt.Errorf("task %q, arg %q: %w", task, ab.Name, err)
	}
	arg := descriptor.Argument{
		Name:   descriptor.Normalize(ab.Name),
		Check:  descriptor.Typed(ty),
		Plural: ab.Plural,
	}
	if ab.Default != nil {
		def, err := convert.Convert(*ab.Default, ty)
		if err != nil {
			return descriptor.Argument{}, fmt.Errorf("task %q, arg %q: default: %w", task, ab.Name, err)
		}
		arg.Default = &def
	}
	return arg, nil
}

func translateOption(task string, ob *OptionBlock) (descriptor.Option, error) {
	opt := descriptor.Option{
		Name:        descriptor.Normalize(ob.Name),
		Plural:      ob.Plural,
		ValueName:   ob.ValueName,
		Hint:        ob.Description,
		FromSetting: ob.FromSetting,
	}
	if len(ob.Key) > 1 {
		return descriptor.Option{}, fmt.Errorf("task %q, option %q: key must be a single character", task, ob.Name)
	}
	if ob.Key != "" {
		opt.Key = ob.Key[0]
	}
	if ob.Type == nil {
		// No type means a toggle; a default or plural flag contradicts that.
		if ob.Default != nil || ob.Plural {
			return descriptor.Option{}, fmt.Errorf("task %q, option %q: toggle cannot carry a default or plural flag", task, ob.Name)
		}
		return opt, nil
	}
	ty, err := constraint(ob.Type)
	if err != nil {
		return descriptor.Option{}, fmt.Errorf("task %q, option %q: %w", task, ob.Name, err)
	}
	opt.Check = descriptor.Typed(ty)
	if ob.Default != nil {
		def, cerr := convert.Convert(*ob.Default, ty)
		if cerr != nil {
			return descriptor.Option{}, fmt.Errorf("task %q, option %q: default: %w", task, ob.Name, cerr)
		}
		opt.Default = &def
	}
	return opt, nil
}

// translateSetting builds a typed setting whose resolver coerces sources
// to the declared type. A missing type defaults to string; a missing
// default resolves to a typed null until a source supplies a value.
func translateSetting(sb *SettingBlock) (*env.Setting, error) {
	ty := cty.String
	if sb.Type != nil {
		var err error
		ty, err = constraint(sb.Type)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", sb.Name, err)
		}
	}
	def := cty.NullVal(ty)
	if sb.Default != nil {
		var err error
		def, err = convert.Convert(*sb.Default, ty)
		if err != nil {
			return nil, fmt.Errorf("setting %q: default: %w", sb.Name, err)
		}
	}
	check := descriptor.Typed(ty)
	s := env.NewSetting(sb.Name, sb.Description, nil)
	s.Resolve = func(e *env.Env, raw *string) error {
		if raw == nil {
			e.Put(s.Name, def)
			return nil
		}
		val, err := check(*raw)
		if err != nil {
			return fmt.Errorf("setting %s: %w", s.Name, err)
		}
		e.Put(s.Name, val)
		return nil
	}
	return s, nil
}

// constraint evaluates a manifest type expression like string, number or
// bool into a cty type.
func constraint(expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.NilType, fmt.Errorf("missing type")
	}
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type: %w", diags)
	}
	return ty, nil
}
