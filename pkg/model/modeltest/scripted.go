// Package modeltest provides a deterministic scripted Model for turn loop
// and assembler tests.
package modeltest

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/model"
	"github.com/go-go-golems/mangiafuoco/pkg/streaming"
)

// Response configures one model invocation in a scripted sequence: either
// a stream of events or an error returned before any event is delivered.
type Response struct {
	Events []streaming.Event
	Err    error
}

// Respond scripts a successful invocation delivering the given events.
func Respond(events ...streaming.Event) Response {
	return Response{Events: events}
}

// Fail scripts an invocation that errors out immediately.
func Fail(err error) Response {
	return Response{Err: err}
}

// ScriptedModel plays back predefined responses, one per Stream call, and
// records every request it receives.
type ScriptedModel struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []model.Request
}

var _ model.Model = (*ScriptedModel)(nil)

func NewScriptedModel(responses ...Response) *ScriptedModel {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &ScriptedModel{
		responses: cloned,
	}
}

func (m *ScriptedModel) Stream(ctx context.Context, req *model.Request) (<-chan streaming.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req != nil {
		recorded := *req
		recorded.Messages = append(chat.Conversation(nil), req.Messages...)
		m.requests = append(m.requests, recorded)
	}

	if m.index >= len(m.responses) {
		return nil, errors.Errorf("script exhausted at step %d", m.index+1)
	}
	current := m.responses[m.index]
	m.index++
	if current.Err != nil {
		return nil, current.Err
	}

	ch := make(chan streaming.Event, len(current.Events))
	for _, ev := range current.Events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

// CallCount reports how many times Stream was called.
func (m *ScriptedModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Requests returns copies of the requests seen so far, in call order.
func (m *ScriptedModel) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Request(nil), m.requests...)
}

// TextTurn scripts a complete streamed assistant message holding a single
// text block.
func TextTurn(text string, stop chat.StopReason) Response {
	return Respond(
		streaming.NewMessageStart(chat.RoleAssistant),
		streaming.NewContentBlockStart(0),
		streaming.NewTextDelta(0, text),
		streaming.NewContentBlockStop(0),
		streaming.NewMessageStop(stop),
	)
}

// ToolUseTurn scripts a complete streamed assistant message requesting one
// tool call with the given JSON-encoded input.
func ToolUseTurn(id, name, inputJSON string) Response {
	return Respond(
		streaming.NewMessageStart(chat.RoleAssistant),
		streaming.NewToolUseStartEvent(0, id, name),
		streaming.NewToolUseInputDelta(0, inputJSON),
		streaming.NewContentBlockStop(0),
		streaming.NewMessageStop(chat.StopReasonToolUse),
	)
}
