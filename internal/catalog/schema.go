package catalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// ArgBlock declares one positional argument in a task manifest.
type ArgBlock struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type"`
	Default *cty.Value     `hcl:"default,optional"`
	Plural  bool           `hcl:"plural,optional"`
}

// OptionBlock declares one option in a task manifest. A block without a
// type is a boolean toggle.
type OptionBlock struct {
	Name        string         `hcl:"name,label"`
	Key         string         `hcl:"key,optional"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
	Plural      bool           `hcl:"plural,optional"`
	ValueName   string         `hcl:"value_name,optional"`
	Description string         `hcl:"description,optional"`
	FromSetting bool           `hcl:"from_setting,optional"`
}

// TaskBlock declares one task and names the registered Go handler (or
// factory, for construct-then-run tasks) that implements it.
type TaskBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Handler     string         `hcl:"handler,optional"`
	Factory     string         `hcl:"factory,optional"`
	Args        []*ArgBlock    `hcl:"arg,block"`
	Opts        []*OptionBlock `hcl:"option,block"`
}

// SettingBlock declares one configuration setting.
type SettingBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

// Manifest is the top-level structure of one extension manifest file.
type Manifest struct {
	Tasks    []*TaskBlock    `hcl:"task,block"`
	Settings []*SettingBlock `hcl:"setting,block"`
}
