package turnloop

import (
	"context"

	"github.com/go-go-golems/mangiafuoco/pkg/events"
)

// streamBufferSize bounds the event queue of RunStream. The channel sink
// drops events rather than block once the consumer falls this far behind.
const streamBufferSize = 256

// Execution is a turn running on a background goroutine. Events delivers
// every lifecycle and stream event of the turn and is closed when the turn
// finishes; Wait blocks until then and returns the outcome.
type Execution struct {
	Events <-chan events.Event

	done   chan struct{}
	result *TurnResult
	err    error
}

// Wait blocks until the turn finishes.
func (e *Execution) Wait() (*TurnResult, error) {
	<-e.done
	return e.result, e.err
}

// RunStream runs the turn on a background goroutine and relays its events
// through the returned Execution. The loop's sequencing is unchanged, this
// is purely a delivery mechanism for callers that want to consume events
// incrementally. Sinks already attached to ctx keep receiving events too.
func (l *Loop) RunStream(ctx context.Context, tc *TurnContext) *Execution {
	ch := make(chan events.Event, streamBufferSize)
	exec := &Execution{
		Events: ch,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(exec.done)
		defer close(ch)
		runCtx := events.WithEventSinks(ctx, events.NewChannelSink(ch))
		exec.result, exec.err = l.Run(runCtx, tc)
	}()
	return exec
}
