package events

import (
	"github.com/rs/zerolog/log"
)

// EventSink is a destination for turn loop events. Implementations can
// publish to channels, message buses, logging systems or UIs. PublishEvent
// must not block for long; the loop treats delivery as fire-and-forget.
type EventSink interface {
	PublishEvent(event Event) error
}

// ChannelSink delivers events on a Go channel. Sends never block the loop:
// when the channel is full the event is dropped with a warning, so a stalled
// consumer cannot wedge the turn loop.
type ChannelSink struct {
	ch chan<- Event
}

func NewChannelSink(ch chan<- Event) *ChannelSink {
	return &ChannelSink{ch: ch}
}

func (s *ChannelSink) PublishEvent(event Event) error {
	select {
	case s.ch <- event:
	default:
		log.Warn().Str("event_type", string(event.Type())).Msg("channel sink full, dropping event")
	}
	return nil
}

var _ EventSink = &ChannelSink{}

// NullSink discards every event.
type NullSink struct{}

func (NullSink) PublishEvent(Event) error { return nil }

var _ EventSink = NullSink{}
