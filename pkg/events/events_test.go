package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

func testMetadata() EventMetadata {
	return EventMetadata{ID: uuid.New(), TurnID: "turn-1", Cycle: 2}
}

func TestEventJSONRoundTrip(t *testing.T) {
	original := NewToolCallResultEvent(testMetadata(), "toolu_01", "calculator", "4", false, 12*time.Millisecond)

	b, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := NewEventFromJson(b)
	require.NoError(t, err)

	result, ok := decoded.(*EventToolCallResult)
	require.True(t, ok)
	assert.Equal(t, EventTypeToolCallResult, result.Type())
	assert.Equal(t, "toolu_01", result.ToolUseID)
	assert.Equal(t, "calculator", result.Name)
	assert.Equal(t, "4", result.Result)
	assert.Equal(t, int64(12), result.DurationMs)
	assert.Equal(t, "turn-1", result.Metadata().TurnID)
	assert.Equal(t, b, decoded.Payload())
}

func TestFinalEventRoundTrip(t *testing.T) {
	original := NewFinalEvent(testMetadata(), chat.StopReasonEndTurn, "all done")

	b, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := NewEventFromJson(b)
	require.NoError(t, err)

	final, ok := decoded.(*EventFinal)
	require.True(t, ok)
	assert.Equal(t, chat.StopReasonEndTurn, final.StopReason)
	assert.Equal(t, "all done", final.Text)
}

func TestNewEventFromJsonRejectsUnknownType(t *testing.T) {
	_, err := NewEventFromJson([]byte(`{"type":"no-such-event"}`))
	assert.Error(t, err)
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	ch := make(chan Event, 1)
	sink := NewChannelSink(ch)

	require.NoError(t, sink.PublishEvent(NewTurnStartEvent(testMetadata())))
	// second publish must not block even though the channel is full
	require.NoError(t, sink.PublishEvent(NewTurnStartEvent(testMetadata())))

	assert.Len(t, ch, 1)
}

func TestPublishEventToContext(t *testing.T) {
	ch := make(chan Event, 4)
	ctx := WithEventSinks(context.Background(), NewChannelSink(ch))

	PublishEventToContext(ctx, NewForcedStopEvent(testMetadata(), "nope"))

	require.Len(t, ch, 1)
	ev := <-ch
	stop, ok := ev.(*EventForcedStop)
	require.True(t, ok)
	assert.Equal(t, "nope", stop.Reason)
}

func TestPublishEventToContextWithoutSinksIsNoop(t *testing.T) {
	PublishEventToContext(context.Background(), NewTurnStartEvent(testMetadata()))
}

type failingSink struct{}

func (failingSink) PublishEvent(Event) error {
	return assert.AnError
}

func TestPublishEventToContextSkipsFailingSinks(t *testing.T) {
	ch := make(chan Event, 1)
	ctx := WithEventSinks(context.Background(), failingSink{}, NewChannelSink(ch))

	PublishEventToContext(ctx, NewTurnStartEvent(testMetadata()))

	assert.Len(t, ch, 1)
}

func TestWithEventSinksAccumulates(t *testing.T) {
	first := make(chan Event, 1)
	second := make(chan Event, 1)

	ctx := WithEventSinks(context.Background(), NewChannelSink(first))
	ctx = WithEventSinks(ctx, NewChannelSink(second))

	PublishEventToContext(ctx, NewTurnStartEvent(testMetadata()))
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}
