package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestValidateArgs(t *testing.T) {
	t.Run("plural must be last", func(t *testing.T) {
		err := ValidateArgs([]Argument{
			Variadic("files", String),
			Arg("dest", String),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "plural argument")
	})

	t.Run("plural last is accepted", func(t *testing.T) {
		err := ValidateArgs([]Argument{
			Arg("dest", String),
			Variadic("files", String),
		})
		require.NoError(t, err)
	})

	t.Run("mandatory after optional is rejected", func(t *testing.T) {
		err := ValidateArgs([]Argument{
			OptionalArg("mode", String, cty.StringVal("fast")),
			Arg("target", String),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mandatory argument")
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		err := ValidateArgs([]Argument{
			Arg("x", String),
			Arg("x", Int),
		})
		require.Error(t, err)
	})

	t.Run("missing checker is rejected", func(t *testing.T) {
		err := ValidateArgs([]Argument{{Name: "x"}})
		require.Error(t, err)
	})
}

func TestValidateOpts(t *testing.T) {
	t.Run("duplicate long names", func(t *testing.T) {
		err := ValidateOpts([]Option{
			Flag("verbose", 'v', "talk more"),
			Flag("verbose", 0, "talk more"),
		})
		require.Error(t, err)
	})

	t.Run("duplicate short keys", func(t *testing.T) {
		err := ValidateOpts([]Option{
			Flag("verbose", 'v', "talk more"),
			Opt("version", 'v', String, cty.StringVal(""), "V", "version to use"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "-v")
	})

	t.Run("toggle with default is rejected", func(t *testing.T) {
		def := cty.True
		err := ValidateOpts([]Option{{Name: "force", Default: &def}})
		require.Error(t, err)
	})

	t.Run("valid mixed set", func(t *testing.T) {
		err := ValidateOpts([]Option{
			Flag("verbose", 'v', "talk more"),
			Opt("jobs", 'j', Int, cty.NumberIntVal(1), "N", "parallel jobs"),
			Repeatable("tag", 't', String, "TAG", "add a tag"),
		})
		require.NoError(t, err)
	})
}

func TestArgumentMandatory(t *testing.T) {
	assert.True(t, Arg("x", String).Mandatory())
	assert.False(t, OptionalArg("x", String, cty.StringVal("d")).Mandatory())
	assert.False(t, Variadic("x", String).Mandatory())
}

func TestOptionToggle(t *testing.T) {
	assert.True(t, Flag("force", 'f', "").Toggle())
	assert.False(t, Opt("jobs", 'j', Int, cty.NumberIntVal(1), "N", "").Toggle())
	assert.False(t, Repeatable("tag", 0, String, "TAG", "").Toggle())
}

func TestFromEnvDoesNotMutateReceiver(t *testing.T) {
	base := Opt("color", 0, String, cty.StringVal("auto"), "WHEN", "")
	wired := base.FromEnv()
	assert.False(t, base.FromSetting)
	assert.True(t, wired.FromSetting)
}
