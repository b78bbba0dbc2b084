package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTool(t *testing.T, name string) *Definition {
	t.Helper()
	tool, err := NewToolFromFunc(name, "test tool", func() (string, error) {
		return name, nil
	})
	require.NoError(t, err)
	return tool
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewInMemoryRegistry()
	require.NoError(t, registry.Register(newTestTool(t, "alpha")))

	tool, ok := registry.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", tool.Name)

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	registry := NewInMemoryRegistry()
	require.NoError(t, registry.Register(newTestTool(t, "alpha")))

	assert.Error(t, registry.Register(newTestTool(t, "alpha")))
	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(&Definition{}))
}

func TestRegistryListIsSorted(t *testing.T) {
	registry := NewInMemoryRegistry()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, registry.Register(newTestTool(t, name)))
	}

	list := registry.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "bravo", list[1].Name)
	assert.Equal(t, "charlie", list[2].Name)
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewInMemoryRegistry()
	require.NoError(t, registry.Register(newTestTool(t, "alpha")))
	assert.Equal(t, 1, registry.Count())

	require.NoError(t, registry.Unregister("alpha"))
	assert.Equal(t, 0, registry.Count())
	assert.Error(t, registry.Unregister("alpha"))
}
