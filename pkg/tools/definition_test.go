package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query string `json:"query" jsonschema:"description=What to search for"`
	Limit int    `json:"limit,omitempty"`
}

func TestNewToolFromFunc(t *testing.T) {
	tool, err := NewToolFromFunc("search", "Searches things", func(input searchInput) (string, error) {
		return "found: " + input.Query, nil
	})
	require.NoError(t, err)

	assert.Equal(t, "search", tool.Name)
	assert.Equal(t, "Searches things", tool.Description)
	require.NotNil(t, tool.Parameters)
	assert.Equal(t, "object", tool.Parameters.Type)

	result, err := tool.Invoke(context.Background(), map[string]any{"query": "gophers"})
	require.NoError(t, err)
	assert.Equal(t, "found: gophers", result)
}

func TestNewToolFromFuncWithContext(t *testing.T) {
	tool, err := NewToolFromFunc("ctx-tool", "", func(ctx context.Context, input searchInput) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return input.Query, nil
	})
	require.NoError(t, err)

	result, err := tool.Invoke(context.Background(), map[string]any{"query": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tool.Invoke(canceled, map[string]any{"query": "ok"})
	assert.Error(t, err)
}

func TestNewToolFromFuncNoInput(t *testing.T) {
	tool, err := NewToolFromFunc("ping", "", func() (string, error) {
		return "pong", nil
	})
	require.NoError(t, err)

	result, err := tool.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", result)
}

func TestNewToolFromFuncRejectsNonFunctions(t *testing.T) {
	_, err := NewToolFromFunc("bad", "", 42)
	assert.Error(t, err)

	_, err = NewToolFromFunc("bad", "", nil)
	assert.Error(t, err)
}

func TestNewToolFromFuncRejectsBadSignatures(t *testing.T) {
	_, err := NewToolFromFunc("bad", "", func(a, b, c string) string { return "" })
	assert.Error(t, err)

	_, err = NewToolFromFunc("bad", "", func(s string) {})
	assert.Error(t, err)
}
