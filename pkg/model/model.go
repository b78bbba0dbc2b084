package model

import (
	"context"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/streaming"
	"github.com/go-go-golems/mangiafuoco/pkg/tools"
)

// Request is the provider-agnostic input of one model invocation. Adapters
// translate it into their vendor wire format and translate vendor stream
// chunks back into streaming events.
type Request struct {
	Messages     chat.Conversation   `json:"messages"`
	SystemPrompt string              `json:"system_prompt,omitempty"`
	Tools        []*tools.Definition `json:"tools,omitempty"`
}

// Model is implemented by provider adapters. Stream starts one invocation
// and delivers its low-level events on the returned channel, which is closed
// when the invocation finishes. Failures are delivered as an in-band error
// event; throttling and context overflow must arrive as *ThrottledError and
// *ContextOverflowError respectively so the turn loop can recover, all other
// failures propagate as generic errors.
type Model interface {
	Stream(ctx context.Context, req *Request) (<-chan streaming.Event, error)
}
