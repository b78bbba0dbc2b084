package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

type sinksKey struct{}

// WithEventSinks returns a context carrying the given sinks in addition to
// any already attached. The turn loop and the tool dispatcher publish
// through the context so intermediate layers need no sink plumbing.
func WithEventSinks(ctx context.Context, sinks ...EventSink) context.Context {
	if len(sinks) == 0 {
		return ctx
	}
	combined := append(append([]EventSink{}, GetEventSinks(ctx)...), sinks...)
	return context.WithValue(ctx, sinksKey{}, combined)
}

// GetEventSinks returns the sinks attached to ctx, outermost first.
func GetEventSinks(ctx context.Context) []EventSink {
	sinks, _ := ctx.Value(sinksKey{}).([]EventSink)
	return sinks
}

// PublishEventToContext delivers the event to every sink attached to ctx.
// Delivery is fire-and-forget: a sink that errors is logged and skipped so
// a broken consumer cannot stall the turn.
func PublishEventToContext(ctx context.Context, event Event) {
	for _, sink := range GetEventSinks(ctx) {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().
				Err(err).
				Str("event_type", string(event.Type())).
				Msg("event sink rejected event")
		}
	}
}
