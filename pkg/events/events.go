package events

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/streaming"
)

type EventType string

const (
	// EventTypeTurnStart opens one external invocation of the turn loop.
	EventTypeTurnStart EventType = "turn-start"

	// EventTypeStream forwards a raw model stream event verbatim.
	EventTypeStream EventType = "stream"

	// EventTypeThrottledDelay reports a backoff sleep before a retry.
	EventTypeThrottledDelay EventType = "throttled-delay"

	// EventTypeForcedStop precedes every unrecoverable error so UIs can
	// render a clean failure message.
	EventTypeForcedStop EventType = "forced-stop"

	// Execution-phase tool events (we are actually executing tools locally)
	EventTypeToolCallExecute EventType = "tool-call-execute"
	EventTypeToolCallResult  EventType = "tool-call-execution-result"

	EventTypeFinal EventType = "final"
	EventTypeError EventType = "error"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// payload is set when the event was deserialized from JSON
	payload []byte
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

var _ Event = &EventImpl{}

// EventTurnStart is emitted once per external invocation, before the first
// model call.
type EventTurnStart struct {
	EventImpl
}

func NewTurnStartEvent(metadata EventMetadata) *EventTurnStart {
	return &EventTurnStart{
		EventImpl: EventImpl{Type_: EventTypeTurnStart, Metadata_: metadata},
	}
}

// EventStream wraps one raw model stream event. Every stream event is
// forwarded through the sinks before the assembler folds it.
type EventStream struct {
	EventImpl
	Stream streaming.Event `json:"stream"`
}

func NewStreamEvent(metadata EventMetadata, stream streaming.Event) *EventStream {
	return &EventStream{
		EventImpl: EventImpl{Type_: EventTypeStream, Metadata_: metadata},
		Stream:    stream,
	}
}

// EventThrottledDelay is emitted before the turn loop sleeps on a
// throttling signal.
type EventThrottledDelay struct {
	EventImpl
	DelayMs int64 `json:"delay_ms"`
	Attempt int   `json:"attempt"`
}

func NewThrottledDelayEvent(metadata EventMetadata, delay time.Duration, attempt int) *EventThrottledDelay {
	return &EventThrottledDelay{
		EventImpl: EventImpl{Type_: EventTypeThrottledDelay, Metadata_: metadata},
		DelayMs:   delay.Milliseconds(),
		Attempt:   attempt,
	}
}

// EventForcedStop carries the human-readable reason the turn loop is about
// to surface an unrecoverable error.
type EventForcedStop struct {
	EventImpl
	Reason string `json:"reason"`
}

func NewForcedStopEvent(metadata EventMetadata, reason string) *EventForcedStop {
	return &EventForcedStop{
		EventImpl: EventImpl{Type_: EventTypeForcedStop, Metadata_: metadata},
		Reason:    reason,
	}
}

// EventToolCallExecute is emitted just before a tool runs locally.
type EventToolCallExecute struct {
	EventImpl
	ToolUseID string `json:"tool_use_id"`
	Name      string `json:"name"`
	Input     string `json:"input,omitempty"`
}

func NewToolCallExecuteEvent(metadata EventMetadata, toolUseID, name, input string) *EventToolCallExecute {
	return &EventToolCallExecute{
		EventImpl: EventImpl{Type_: EventTypeToolCallExecute, Metadata_: metadata},
		ToolUseID: toolUseID,
		Name:      name,
		Input:     input,
	}
}

// EventToolCallResult is emitted when a local tool invocation finishes,
// whether it succeeded or was converted into an error result.
type EventToolCallResult struct {
	EventImpl
	ToolUseID  string `json:"tool_use_id"`
	Name       string `json:"name"`
	Result     string `json:"result,omitempty"`
	IsError    bool   `json:"is_error"`
	DurationMs int64  `json:"duration_ms"`
}

func NewToolCallResultEvent(metadata EventMetadata, toolUseID, name, result string, isError bool, duration time.Duration) *EventToolCallResult {
	return &EventToolCallResult{
		EventImpl:  EventImpl{Type_: EventTypeToolCallResult, Metadata_: metadata},
		ToolUseID:  toolUseID,
		Name:       name,
		Result:     result,
		IsError:    isError,
		DurationMs: duration.Milliseconds(),
	}
}

// EventFinal closes a successful external invocation.
type EventFinal struct {
	EventImpl
	StopReason chat.StopReason `json:"stop_reason"`
	Text       string          `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, stopReason chat.StopReason, text string) *EventFinal {
	return &EventFinal{
		EventImpl:  EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		StopReason: stopReason,
		Text:       text,
	}
}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	return &EventError{
		EventImpl:   EventImpl{Type_: EventTypeError, Metadata_: metadata},
		ErrorString: errStr,
	}
}

// NewEventFromJson decodes a serialized event back into its concrete type,
// for consumers on the far side of a message bus.
func NewEventFromJson(b []byte) (Event, error) {
	var base EventImpl
	if err := json.Unmarshal(b, &base); err != nil {
		return nil, errors.Wrap(err, "unmarshal event envelope")
	}

	var ev Event
	switch base.Type_ {
	case EventTypeTurnStart:
		ev = &EventTurnStart{}
	case EventTypeStream:
		ev = &EventStream{}
	case EventTypeThrottledDelay:
		ev = &EventThrottledDelay{}
	case EventTypeForcedStop:
		ev = &EventForcedStop{}
	case EventTypeToolCallExecute:
		ev = &EventToolCallExecute{}
	case EventTypeToolCallResult:
		ev = &EventToolCallResult{}
	case EventTypeFinal:
		ev = &EventFinal{}
	case EventTypeError:
		ev = &EventError{}
	default:
		return nil, errors.Errorf("unknown event type %q", base.Type_)
	}

	if err := json.Unmarshal(b, ev); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s event", base.Type_)
	}
	if impl, ok := ev.(interface{ setPayload([]byte) }); ok {
		impl.setPayload(b)
	}
	return ev, nil
}

func (e *EventImpl) setPayload(b []byte) {
	e.payload = b
}
