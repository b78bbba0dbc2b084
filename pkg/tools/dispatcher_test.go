package tools

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
)

func dispatcherRegistry(t *testing.T) *InMemoryRegistry {
	t.Helper()
	registry := NewInMemoryRegistry()

	slow, err := NewToolFromFunc("slow", "", func(ctx context.Context) (string, error) {
		select {
		case <-time.After(50 * time.Millisecond):
			return "slow done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	require.NoError(t, err)
	require.NoError(t, registry.Register(slow))

	fast, err := NewToolFromFunc("fast", "", func() (string, error) {
		return "fast done", nil
	})
	require.NoError(t, err)
	require.NoError(t, registry.Register(fast))

	failing, err := NewToolFromFunc("failing", "", func() (string, error) {
		return "", errors.New("tool blew up")
	})
	require.NoError(t, err)
	require.NoError(t, registry.Register(failing))

	panicky, err := NewToolFromFunc("panicky", "", func() (string, error) {
		panic("boom")
	})
	require.NoError(t, err)
	require.NoError(t, registry.Register(panicky))

	return registry
}

func TestDispatchPreservesRequestOrder(t *testing.T) {
	d := NewDispatcher(
		WithRegistry(dispatcherRegistry(t)),
		WithConfig(DefaultConfig().WithMaxParallel(3)),
	)

	calls := []chat.ToolUseBlock{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
		{ID: "3", Name: "failing"},
	}
	results := d.Dispatch(context.Background(), calls)

	require.Len(t, results, 3)
	assert.Equal(t, "1", results[0].ToolUseID)
	assert.Equal(t, "2", results[1].ToolUseID)
	assert.Equal(t, "3", results[2].ToolUseID)

	assert.Equal(t, chat.ToolResultSuccess, results[0].Status)
	assert.Equal(t, "slow done", results[0].Content[0].Text)
	assert.Equal(t, chat.ToolResultSuccess, results[1].Status)
	assert.Equal(t, chat.ToolResultError, results[2].Status)
	assert.Contains(t, results[2].Content[0].Text, "tool blew up")
}

func TestDispatchSequential(t *testing.T) {
	d := NewDispatcher(WithRegistry(dispatcherRegistry(t)))

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "fast"},
		{ID: "2", Name: "fast"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, chat.ToolResultSuccess, results[0].Status)
	assert.Equal(t, chat.ToolResultSuccess, results[1].Status)
}

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher(WithRegistry(dispatcherRegistry(t)))

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "no-such-tool"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, chat.ToolResultError, results[0].Status)
	assert.Contains(t, results[0].Content[0].Text, "unknown tool")
}

func TestDispatchTimeout(t *testing.T) {
	d := NewDispatcher(
		WithRegistry(dispatcherRegistry(t)),
		WithConfig(DefaultConfig().WithTimeout(10*time.Millisecond)),
	)

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "slow"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, chat.ToolResultError, results[0].Status)
	assert.Contains(t, results[0].Content[0].Text, "context deadline exceeded")
}

func TestDispatchContainsPanics(t *testing.T) {
	d := NewDispatcher(WithRegistry(dispatcherRegistry(t)))

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "panicky"},
		{ID: "2", Name: "fast"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, chat.ToolResultError, results[0].Status)
	assert.Contains(t, results[0].Content[0].Text, "panicked")
	assert.Equal(t, chat.ToolResultSuccess, results[1].Status)
}

func TestDispatchEnforcesAllowList(t *testing.T) {
	d := NewDispatcher(
		WithRegistry(dispatcherRegistry(t)),
		WithConfig(DefaultConfig().WithAllowedTools("fast")),
	)

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
	})

	assert.Equal(t, chat.ToolResultError, results[0].Status)
	assert.Contains(t, results[0].Content[0].Text, "not allowed")
	assert.Equal(t, chat.ToolResultSuccess, results[1].Status)
}

func TestDispatchWithoutRegistry(t *testing.T) {
	d := NewDispatcher()

	results := d.Dispatch(context.Background(), []chat.ToolUseBlock{
		{ID: "1", Name: "fast"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, chat.ToolResultError, results[0].Status)
}

func TestDispatchPublishesToolEvents(t *testing.T) {
	ch := make(chan events.Event, 16)
	ctx := events.WithEventSinks(context.Background(), events.NewChannelSink(ch))

	d := NewDispatcher(WithRegistry(dispatcherRegistry(t)))
	d.Dispatch(ctx, []chat.ToolUseBlock{
		{ID: "1", Name: "fast"},
	})
	close(ch)

	var sequence []events.EventType
	for ev := range ch {
		sequence = append(sequence, ev.Type())
	}
	require.Equal(t, []events.EventType{
		events.EventTypeToolCallExecute,
		events.EventTypeToolCallResult,
	}, sequence)
}
