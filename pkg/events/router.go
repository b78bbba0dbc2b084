package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// EventRouter fans turn loop events out to registered handlers over an
// in-process pub/sub. It decouples event production from consumption: the
// loop publishes through a WatermillSink and consumers run on the router's
// own goroutines.
type EventRouter struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
}

type EventRouterOption func(*EventRouter)

func WithRouterLogger(logger watermill.LoggerAdapter) EventRouterOption {
	return func(r *EventRouter) {
		r.logger = logger
	}
}

func NewEventRouter(options ...EventRouterOption) (*EventRouter, error) {
	ret := &EventRouter{
		logger: watermill.NopLogger{},
	}
	for _, o := range options {
		o(ret)
	}

	goPubSub := gochannel.NewGoChannel(gochannel.Config{}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}
	ret.router = router

	return ret, nil
}

// AddHandler registers a no-publish handler for one topic. Handlers receive
// the serialized event payload; NewEventFromJson restores the concrete type.
func (e *EventRouter) AddHandler(name string, topic string, f func(msg *message.Message) error) {
	e.router.AddNoPublisherHandler(name, topic, e.Subscriber, f)
}

// AddEventHandler registers a typed handler that receives decoded events.
func (e *EventRouter) AddEventHandler(name string, topic string, f func(ctx context.Context, ev Event) error) {
	e.AddHandler(name, topic, func(msg *message.Message) error {
		defer msg.Ack()
		ev, err := NewEventFromJson(msg.Payload)
		if err != nil {
			log.Error().Err(err).Str("message_id", msg.UUID).Msg("failed to decode event payload")
			// Do not kill the handler for one bad message
			return nil
		}
		return f(msg.Context(), ev)
	})
}

func (e *EventRouter) Running() chan struct{} {
	return e.router.Running()
}

func (e *EventRouter) Run(ctx context.Context) error {
	return e.router.Run(ctx)
}

func (e *EventRouter) Close() error {
	log.Debug().Msg("closing event router publisher")
	if err := e.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close publisher")
		// not returning just yet
	}
	log.Debug().Msg("closing event router")
	return e.router.Close()
}

// WatermillSink publishes events as JSON messages on a watermill topic,
// tagging each with a monotonically increasing sequence number.
type WatermillSink struct {
	publisher message.Publisher
	topic     string

	mu             sync.Mutex
	sequenceNumber uint64
}

func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

func (s *WatermillSink) PublishEvent(event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)

	s.mu.Lock()
	seq := s.sequenceNumber
	s.sequenceNumber++
	s.mu.Unlock()
	msg.Metadata.Set("sequence_number", strconv.FormatUint(seq, 10))

	return s.publisher.Publish(s.topic, msg)
}

var _ EventSink = &WatermillSink{}
