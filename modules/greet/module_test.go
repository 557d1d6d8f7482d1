package greet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/registry"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "World", capitalize("world"))
	assert.Equal(t, "World", capitalize("WORLD"))
	assert.Equal(t, "X", capitalize("x"))
	assert.Equal(t, "", capitalize(""))
}

func TestRegister(t *testing.T) {
	r := registry.New()
	e := env.New()
	require.NoError(t, (&Module{}).Register(r, e))

	task, ok := r.Task("hello")
	require.True(t, ok)
	assert.Equal(t, "greet someone (if not specified, the current user)", task.Hint)
	require.Len(t, task.Args, 1)
	assert.False(t, task.Args[0].Mandatory())

	_, ok = e.Setting("default-name")
	assert.True(t, ok)
}
