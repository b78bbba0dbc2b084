package turnloop

import (
	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/metrics"
)

// TurnContext carries everything one turn execution reads and mutates. The
// history is owned by the caller and edited in place; RequestState is an
// opaque bag the loop threads through unexamined.
type TurnContext struct {
	History      *chat.Conversation
	SystemPrompt string
	RequestState map[string]any
	Metrics      *metrics.Metrics
}

// NewTurnContext wraps a caller-owned history.
func NewTurnContext(history *chat.Conversation) *TurnContext {
	return &TurnContext{
		History:      history,
		RequestState: make(map[string]any),
		Metrics:      metrics.New(),
	}
}

func (tc *TurnContext) WithSystemPrompt(prompt string) *TurnContext {
	tc.SystemPrompt = prompt
	return tc
}

func (tc *TurnContext) WithRequestState(state map[string]any) *TurnContext {
	tc.RequestState = state
	return tc
}

func (tc *TurnContext) normalize() {
	if tc.RequestState == nil {
		tc.RequestState = make(map[string]any)
	}
	if tc.Metrics == nil {
		tc.Metrics = metrics.New()
	}
}
