package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
)

// CallRecorder receives one entry per finished tool call, for metrics
// accumulation. Implementations must be safe for concurrent use.
type CallRecorder interface {
	AddToolCall(name string, duration time.Duration, success bool)
}

// Dispatcher executes the tool use blocks of an assistant message and
// produces one tool result block per call, in the same order.
type Dispatcher struct {
	registry Registry
	config   Config
	metadata events.EventMetadata
	recorder CallRecorder
}

type DispatcherOption func(*Dispatcher)

func WithRegistry(registry Registry) DispatcherOption {
	return func(d *Dispatcher) {
		d.registry = registry
	}
}

func WithConfig(config Config) DispatcherOption {
	return func(d *Dispatcher) {
		d.config = config
	}
}

// WithEventMetadata sets the turn/cycle correlation attached to published
// tool events. Each event still gets its own id.
func WithEventMetadata(metadata events.EventMetadata) DispatcherOption {
	return func(d *Dispatcher) {
		d.metadata = metadata
	}
}

func WithCallRecorder(recorder CallRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Dispatch runs every tool call and returns results positionally aligned
// with calls. A failed call never fails the batch: lookup failures,
// disallowed tools, execution errors, timeouts and panics all become
// error-status results.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []chat.ToolUseBlock) []chat.ToolResultBlock {
	results := make([]chat.ToolResultBlock, len(calls))

	if d.config.MaxParallel <= 1 {
		for i, call := range calls {
			results[i] = d.executeCall(ctx, call)
		}
		return results
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(d.config.MaxParallel)
	for i, call := range calls {
		i, call := i, call
		eg.Go(func() error {
			results[i] = d.executeCall(egCtx, call)
			return nil
		})
	}
	// workers never return errors, they report through results
	_ = eg.Wait()
	return results
}

func (d *Dispatcher) executeCall(ctx context.Context, call chat.ToolUseBlock) chat.ToolResultBlock {
	inputJSON, _ := json.Marshal(call.Input)
	events.PublishEventToContext(ctx, events.NewToolCallExecuteEvent(
		d.eventMetadata(), call.ID, call.Name, string(inputJSON)))

	start := time.Now()
	result := d.run(ctx, call)
	duration := time.Since(start)

	isError := result.Status == chat.ToolResultError
	if d.recorder != nil {
		d.recorder.AddToolCall(call.Name, duration, !isError)
	}
	events.PublishEventToContext(ctx, events.NewToolCallResultEvent(
		d.eventMetadata(), call.ID, call.Name, resultText(result), isError, duration))

	log.Debug().
		Str("tool", call.Name).
		Str("tool_use_id", call.ID).
		Bool("is_error", isError).
		Dur("duration", duration).
		Msg("tool call finished")

	return result
}

func (d *Dispatcher) run(ctx context.Context, call chat.ToolUseBlock) (result chat.ToolResultBlock) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", call.Name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("tool panicked")
			result = chat.ErrorResult(call.ID, fmt.Sprintf("tool %s panicked: %v", call.Name, r))
		}
	}()

	if d.registry == nil {
		return chat.ErrorResult(call.ID, "no tool registry configured")
	}
	if !d.config.IsToolAllowed(call.Name) {
		return chat.ErrorResult(call.ID, fmt.Sprintf("tool %s is not allowed", call.Name))
	}
	tool, ok := d.registry.Get(call.Name)
	if !ok {
		return chat.ErrorResult(call.ID, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	callCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	value, err := tool.Invoke(callCtx, call.Input)
	if err != nil {
		return chat.ErrorResult(call.ID, err.Error())
	}
	switch v := value.(type) {
	case nil:
		return chat.TextResult(call.ID, "")
	case string:
		return chat.TextResult(call.ID, v)
	default:
		return chat.JSONResult(call.ID, v)
	}
}

func (d *Dispatcher) eventMetadata() events.EventMetadata {
	meta := d.metadata
	meta.ID = uuid.New()
	return meta
}

func resultText(result chat.ToolResultBlock) string {
	if len(result.Content) == 0 {
		return ""
	}
	part := result.Content[0]
	if part.JSON != nil {
		b, err := json.Marshal(part.JSON)
		if err != nil {
			return fmt.Sprintf("%v", part.JSON)
		}
		return string(b)
	}
	return part.Text
}
