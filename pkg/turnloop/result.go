package turnloop

import (
	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/metrics"
)

// TurnResult is the outcome of one full turn execution, however many
// internal model/tool cycles it took.
type TurnResult struct {
	StopReason   chat.StopReason
	Message      chat.Message
	Metrics      *metrics.Metrics
	Trace        *metrics.Span
	RequestState map[string]any
}

// Text returns the concatenated text of the final message.
func (r *TurnResult) Text() string {
	return r.Message.Text()
}
