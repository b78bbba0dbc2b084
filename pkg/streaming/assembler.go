package streaming

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

// Observer receives every raw stream event before it is folded, so callers
// can drive their own UI or logging without the assembler's abstraction
// leaking into the fold. It must not block for long.
type Observer func(Event)

// Result is the outcome of assembling one complete model response.
type Result struct {
	StopReason chat.StopReason
	Message    chat.Message
	Usage      chat.Usage
	LatencyMs  int64
}

// Assembler folds a finite, in-order sequence of stream events into one
// structured message. It performs no I/O; the event sequence comes from the
// model collaborator.
type Assembler struct {
	observer Observer
	history  *chat.Conversation
}

type AssemblerOption func(*Assembler)

// WithObserver registers the raw-event observer callback.
func WithObserver(fn Observer) AssemblerOption {
	return func(a *Assembler) { a.observer = fn }
}

// WithHistory gives the assembler access to the conversation so that a
// redact-content event can overwrite the last user message in place.
func WithHistory(history *chat.Conversation) AssemblerOption {
	return func(a *Assembler) { a.history = history }
}

func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// blockAccumulator collects the deltas of one open content block until its
// stop event flushes it.
type blockAccumulator struct {
	toolUse      *ToolUseStart
	text         strings.Builder
	input        strings.Builder
	reasoning    strings.Builder
	signature    strings.Builder
	sawReasoning bool
}

// Assemble consumes events until the channel closes or a terminal error
// event arrives, and returns the assembled message. Stream failures are
// returned as-is so typed errors (throttling, context overflow) remain
// distinguishable by the caller.
func (a *Assembler) Assemble(ctx context.Context, events <-chan Event) (*Result, error) {
	state := &assembleState{role: chat.RoleAssistant, stopReason: chat.StopReasonEndTurn}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return state.result(), nil
			}
			if a.observer != nil {
				a.observer(ev)
			}
			if ev.Err != nil {
				return nil, ev.Err
			}
			a.fold(state, ev)
		}
	}
}

type assembleState struct {
	role       chat.Role
	blocks     []chat.ContentBlock
	current    *blockAccumulator
	stopReason chat.StopReason
	usage      chat.Usage
	latencyMs  int64
	redacted   *string
}

func (s *assembleState) result() *Result {
	content := s.blocks
	if s.redacted != nil {
		content = []chat.ContentBlock{chat.NewTextBlock(*s.redacted)}
	}
	return &Result{
		StopReason: s.stopReason,
		Message:    chat.Message{Role: s.role, Content: content},
		Usage:      s.usage,
		LatencyMs:  s.latencyMs,
	}
}

func (a *Assembler) fold(state *assembleState, ev Event) {
	switch {
	case ev.MessageStart != nil:
		state.role = ev.MessageStart.Role

	case ev.ContentBlockStart != nil:
		if state.current != nil {
			// The provider skipped a stop event; flush what we have.
			a.flushBlock(state)
		}
		state.current = &blockAccumulator{toolUse: ev.ContentBlockStart.ToolUse}

	case ev.ContentBlockDelta != nil:
		if state.current == nil {
			state.current = &blockAccumulator{}
		}
		delta := ev.ContentBlockDelta.Delta
		switch {
		case delta.ToolUseInput != "":
			state.current.input.WriteString(delta.ToolUseInput)
		case delta.ReasoningText != "":
			state.current.sawReasoning = true
			state.current.reasoning.WriteString(delta.ReasoningText)
		case delta.ReasoningSignature != "":
			state.current.sawReasoning = true
			state.current.signature.WriteString(delta.ReasoningSignature)
		default:
			state.current.text.WriteString(delta.Text)
		}

	case ev.ContentBlockStop != nil:
		a.flushBlock(state)

	case ev.MessageStop != nil:
		state.stopReason = ev.MessageStop.StopReason

	case ev.Metadata != nil:
		state.usage = ev.Metadata.Usage
		state.latencyMs = ev.Metadata.LatencyMs

	case ev.RedactContent != nil:
		a.redact(state, ev.RedactContent)
	}
}

// flushBlock finalizes the open accumulator into an immutable content block.
func (a *Assembler) flushBlock(state *assembleState) {
	acc := state.current
	if acc == nil {
		return
	}
	state.current = nil

	switch {
	case acc.toolUse != nil:
		input := map[string]any{}
		raw := acc.input.String()
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				// Degrade to an empty input object rather than failing the
				// whole stream. This silently drops the malformed input;
				// the warn log is the only trace of it.
				log.Warn().
					Str("tool_use_id", acc.toolUse.ID).
					Str("tool_name", acc.toolUse.Name).
					Err(err).
					Msg("tool use input is not valid JSON, substituting empty input")
				input = map[string]any{}
			}
		}
		state.blocks = append(state.blocks, chat.NewToolUseBlock(acc.toolUse.ID, acc.toolUse.Name, input))

	case acc.sawReasoning:
		state.blocks = append(state.blocks, chat.NewReasoningBlock(acc.reasoning.String(), acc.signature.String()))

	case acc.text.Len() > 0:
		state.blocks = append(state.blocks, chat.NewTextBlock(acc.text.String()))
	}
}

func (a *Assembler) redact(state *assembleState, ev *RedactContentEvent) {
	if ev.RedactUserMessage != nil {
		if a.history == nil {
			log.Warn().Msg("redact user message requested but assembler has no history reference")
		} else if idx := a.history.LastByRole(chat.RoleUser); idx >= 0 {
			(*a.history)[idx].Content = []chat.ContentBlock{chat.NewTextBlock(*ev.RedactUserMessage)}
		}
	}
	if ev.RedactAssistantMessage != nil {
		state.redacted = ev.RedactAssistantMessage
		state.current = nil
	}
}
