package events

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventMetadata correlates an event with the turn and cycle that produced
// it.
type EventMetadata struct {
	ID     uuid.UUID `json:"event_id" yaml:"event_id"`
	TurnID string    `json:"turn_id,omitempty" yaml:"turn_id,omitempty"`
	Cycle  int       `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	// Extra carries caller-specific context values
	Extra map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("event_id", em.ID.String())
	if em.TurnID != "" {
		e.Str("turn_id", em.TurnID)
	}
	if em.Cycle > 0 {
		e.Int("cycle", em.Cycle)
	}
	if len(em.Extra) > 0 {
		e.Interface("extra", em.Extra)
	}
}
