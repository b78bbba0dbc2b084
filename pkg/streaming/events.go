package streaming

import (
	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

// Event is a single low-level event from a model stream. Exactly one member
// is non-nil; Err carries a terminal stream failure in-band so the typed
// error (throttling, context overflow) survives the channel boundary.
type Event struct {
	MessageStart      *MessageStartEvent      `json:"message_start,omitempty"`
	ContentBlockStart *ContentBlockStartEvent `json:"content_block_start,omitempty"`
	ContentBlockDelta *ContentBlockDeltaEvent `json:"content_block_delta,omitempty"`
	ContentBlockStop  *ContentBlockStopEvent  `json:"content_block_stop,omitempty"`
	MessageStop       *MessageStopEvent       `json:"message_stop,omitempty"`
	Metadata          *MetadataEvent          `json:"metadata,omitempty"`
	RedactContent     *RedactContentEvent     `json:"redact_content,omitempty"`

	Err error `json:"-"`
}

type MessageStartEvent struct {
	Role chat.Role `json:"role"`
}

// ToolUseStart announces a tool use block; the input JSON streams in later
// deltas.
type ToolUseStart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ContentBlockStartEvent struct {
	Index   int           `json:"index"`
	ToolUse *ToolUseStart `json:"tool_use,omitempty"`
}

// Delta is one fragment of an open content block. Text and ToolUseInput
// accumulate by concatenation; the reasoning fields accumulate into the
// reasoning text and its signature respectively.
type Delta struct {
	Text               string `json:"text,omitempty"`
	ToolUseInput       string `json:"tool_use_input,omitempty"`
	ReasoningText      string `json:"reasoning_text,omitempty"`
	ReasoningSignature string `json:"reasoning_signature,omitempty"`
}

type ContentBlockDeltaEvent struct {
	Index int   `json:"index"`
	Delta Delta `json:"delta"`
}

type ContentBlockStopEvent struct {
	Index int `json:"index"`
}

type MessageStopEvent struct {
	StopReason chat.StopReason `json:"stop_reason"`
}

type MetadataEvent struct {
	Usage     chat.Usage `json:"usage"`
	LatencyMs int64      `json:"latency_ms"`
}

// RedactContentEvent is emitted when a guardrail fires after generation has
// already streamed. A non-nil RedactUserMessage replaces the content of the
// last user message in the history; a non-nil RedactAssistantMessage
// replaces the in-progress assistant message.
type RedactContentEvent struct {
	RedactUserMessage      *string `json:"redact_user_message,omitempty"`
	RedactAssistantMessage *string `json:"redact_assistant_message,omitempty"`
}

// NewMessageStart returns a message start event.
func NewMessageStart(role chat.Role) Event {
	return Event{MessageStart: &MessageStartEvent{Role: role}}
}

// NewContentBlockStart returns a content block start event for a text or
// reasoning block.
func NewContentBlockStart(index int) Event {
	return Event{ContentBlockStart: &ContentBlockStartEvent{Index: index}}
}

// NewToolUseStartEvent returns a content block start event that opens a tool
// use accumulator.
func NewToolUseStartEvent(index int, id, name string) Event {
	return Event{ContentBlockStart: &ContentBlockStartEvent{
		Index:   index,
		ToolUse: &ToolUseStart{ID: id, Name: name},
	}}
}

// NewTextDelta returns a raw text fragment for the open block.
func NewTextDelta(index int, text string) Event {
	return Event{ContentBlockDelta: &ContentBlockDeltaEvent{Index: index, Delta: Delta{Text: text}}}
}

// NewToolUseInputDelta returns a fragment of the JSON-encoded tool input.
func NewToolUseInputDelta(index int, fragment string) Event {
	return Event{ContentBlockDelta: &ContentBlockDeltaEvent{Index: index, Delta: Delta{ToolUseInput: fragment}}}
}

// NewReasoningTextDelta returns a fragment of reasoning text.
func NewReasoningTextDelta(index int, text string) Event {
	return Event{ContentBlockDelta: &ContentBlockDeltaEvent{Index: index, Delta: Delta{ReasoningText: text}}}
}

// NewReasoningSignatureDelta returns a fragment of the reasoning signature.
func NewReasoningSignatureDelta(index int, signature string) Event {
	return Event{ContentBlockDelta: &ContentBlockDeltaEvent{Index: index, Delta: Delta{ReasoningSignature: signature}}}
}

// NewContentBlockStop returns a content block stop event.
func NewContentBlockStop(index int) Event {
	return Event{ContentBlockStop: &ContentBlockStopEvent{Index: index}}
}

// NewMessageStop returns a message stop event carrying the stop reason.
func NewMessageStop(reason chat.StopReason) Event {
	return Event{MessageStop: &MessageStopEvent{StopReason: reason}}
}

// NewMetadata returns a usage/latency metadata event.
func NewMetadata(usage chat.Usage, latencyMs int64) Event {
	return Event{Metadata: &MetadataEvent{Usage: usage, LatencyMs: latencyMs}}
}

// NewRedactUserMessage returns a redaction event replacing the last user
// message with the given text.
func NewRedactUserMessage(replacement string) Event {
	return Event{RedactContent: &RedactContentEvent{RedactUserMessage: &replacement}}
}

// NewRedactAssistantMessage returns a redaction event replacing the
// in-progress assistant message with the given text.
func NewRedactAssistantMessage(replacement string) Event {
	return Event{RedactContent: &RedactContentEvent{RedactAssistantMessage: &replacement}}
}

// NewErrorEvent wraps a terminal stream failure.
func NewErrorEvent(err error) Event {
	return Event{Err: err}
}
