package turnloop

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
	"github.com/go-go-golems/mangiafuoco/pkg/metrics"
	"github.com/go-go-golems/mangiafuoco/pkg/model"
	"github.com/go-go-golems/mangiafuoco/pkg/streaming"
	"github.com/go-go-golems/mangiafuoco/pkg/tools"
)

// Loop drives one turn of an agent: it invokes the model, assembles the
// streamed response, executes requested tools, feeds their results back and
// repeats until the model stops asking for tools or a bound is hit. One Loop
// instance serves one caller at a time.
type Loop struct {
	model      model.Model
	registry   tools.Registry
	toolConfig tools.Config
	config     LoopConfig
	manager    conversation.Manager
	policy     RecoveryPolicy
}

type Option func(*Loop)

func WithModel(m model.Model) Option {
	return func(l *Loop) { l.model = m }
}

func WithRegistry(registry tools.Registry) Option {
	return func(l *Loop) { l.registry = registry }
}

func WithToolConfig(cfg tools.Config) Option {
	return func(l *Loop) { l.toolConfig = cfg }
}

func WithLoopConfig(cfg LoopConfig) Option {
	return func(l *Loop) { l.config = cfg }
}

// WithManager overrides the sliding-window manager applied after the turn.
func WithManager(m conversation.Manager) Option {
	return func(l *Loop) { l.manager = m }
}

func New(options ...Option) (*Loop, error) {
	l := &Loop{
		toolConfig: tools.DefaultConfig(),
		config:     DefaultLoopConfig(),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.model == nil {
		return nil, errors.New("turnloop: no model configured")
	}
	if l.manager == nil {
		l.manager = conversation.NewSlidingWindowManager(l.config.WindowSize)
	}
	l.policy = newRecoveryPolicy(l.config)
	return l, nil
}

// Run executes one full turn against the history in tc. Lifecycle and
// stream events are published to the sinks attached to ctx. On success the
// history has been extended with every message of the turn and trimmed to
// the window; on failure the sinks have received a forced-stop event before
// the error is returned.
func (l *Loop) Run(ctx context.Context, tc *TurnContext) (*TurnResult, error) {
	if tc == nil || tc.History == nil {
		return nil, errors.New("turnloop: nil turn context or history")
	}
	tc.normalize()

	turnID := uuid.NewString()
	trace := metrics.NewSpan("turn")
	defer trace.End()

	result, err := l.run(ctx, tc, turnID, trace)
	if err != nil {
		err = l.classify(tc, err)
		events.PublishEventToContext(ctx, events.NewForcedStopEvent(l.meta(turnID, 0), err.Error()))
		events.PublishEventToContext(ctx, events.NewErrorEvent(l.meta(turnID, 0), err))
		trace.SetAttr("error", err.Error())
		return nil, err
	}

	result.Trace = trace
	return result, nil
}

func (l *Loop) run(ctx context.Context, tc *TurnContext, turnID string, trace *metrics.Span) (*TurnResult, error) {
	conversation.RepairDanglingToolUses(tc.History)
	events.PublishEventToContext(ctx, events.NewTurnStartEvent(l.meta(turnID, 0)))
	log.Debug().
		Str("turn_id", turnID).
		Int("history_length", len(*tc.History)).
		Msg("starting turn")

	for iteration := 1; iteration <= l.config.MaxIterations; iteration++ {
		cycleStart := time.Now()
		cycleSpan := trace.StartChild("cycle")
		cycleSpan.SetAttr("cycle", iteration)

		assembled, err := l.invokeModel(ctx, tc, turnID, iteration, cycleSpan)
		if err != nil {
			cycleSpan.End()
			if model.IsContextOverflow(err) && conversation.MarkOversizedToolResults(tc.History) {
				log.Debug().Int("iteration", iteration).Msg("context overflow, retrying with reduced history")
				continue
			}
			return nil, err
		}

		*tc.History = append(*tc.History, assembled.Message)
		tc.Metrics.AddUsage(assembled.Usage, assembled.LatencyMs)

		if assembled.StopReason != chat.StopReasonToolUse {
			tc.Metrics.AddCycle(time.Since(cycleStart))
			cycleSpan.End()
			// trim before announcing success, so a history that cannot be
			// shortened surfaces through the forced-stop path instead of
			// after a final event already went out
			if err := l.manager.ApplyWindow(tc.History); err != nil {
				return nil, errors.Wrap(err, "apply window")
			}
			events.PublishEventToContext(ctx, events.NewFinalEvent(
				l.meta(turnID, iteration), assembled.StopReason, assembled.Message.Text()))
			log.Debug().
				Str("turn_id", turnID).
				Int("iterations", iteration).
				Str("stop_reason", string(assembled.StopReason)).
				Msg("turn finished")
			return &TurnResult{
				StopReason:   assembled.StopReason,
				Message:      assembled.Message,
				Metrics:      tc.Metrics,
				RequestState: tc.RequestState,
			}, nil
		}

		if l.registry == nil {
			cycleSpan.End()
			return nil, &ConfigurationError{Message: "model requested tools but no tool registry is configured"}
		}

		results := l.dispatchTools(ctx, tc, turnID, iteration, cycleSpan, assembled.Message.ToolUses())
		*tc.History = append(*tc.History, chat.NewToolResultMessage(results...))

		tc.Metrics.AddCycle(time.Since(cycleStart))
		cycleSpan.End()
	}

	return nil, &MaxIterationsError{Limit: l.config.MaxIterations}
}

// invokeModel runs one model invocation through the stream assembler inside
// the throttling retry loop.
func (l *Loop) invokeModel(ctx context.Context, tc *TurnContext, turnID string, iteration int, cycleSpan *metrics.Span) (*streaming.Result, error) {
	req := &model.Request{
		Messages:     *tc.History,
		SystemPrompt: tc.SystemPrompt,
	}
	if l.registry != nil {
		req.Tools = l.registry.List()
	}

	assembler := streaming.NewAssembler(
		streaming.WithHistory(tc.History),
		streaming.WithObserver(func(ev streaming.Event) {
			events.PublishEventToContext(ctx, events.NewStreamEvent(l.meta(turnID, iteration), ev))
		}),
	)

	onDelay := func(delay time.Duration, attempt int) {
		events.PublishEventToContext(ctx, events.NewThrottledDelayEvent(l.meta(turnID, iteration), delay, attempt))
	}

	var assembled *streaming.Result
	err := l.policy.Execute(ctx, onDelay, func() error {
		span := cycleSpan.StartChild("model-invoke")
		defer span.End()

		stream, err := l.model.Stream(ctx, req)
		if err != nil {
			return err
		}
		assembled, err = assembler.Assemble(ctx, stream)
		return err
	})
	if err != nil {
		return nil, err
	}
	return assembled, nil
}

func (l *Loop) dispatchTools(ctx context.Context, tc *TurnContext, turnID string, iteration int, cycleSpan *metrics.Span, uses []chat.ToolUseBlock) []chat.ToolResultBlock {
	span := cycleSpan.StartChild("tool-invoke")
	defer span.End()

	dispatcher := tools.NewDispatcher(
		tools.WithRegistry(l.registry),
		tools.WithConfig(l.toolConfig),
		tools.WithEventMetadata(events.EventMetadata{TurnID: turnID, Cycle: iteration}),
		tools.WithCallRecorder(tc.Metrics),
	)
	return dispatcher.Dispatch(ctx, uses)
}

// classify decides which errors surface bare and which get wrapped with
// the turn's request state. Recoverable signals that made it here exhausted
// their recovery, callers still need to see their concrete type.
func (l *Loop) classify(tc *TurnContext, err error) error {
	var cfgErr *ConfigurationError
	var maxErr *MaxIterationsError
	switch {
	case stderrors.As(err, &cfgErr),
		stderrors.As(err, &maxErr),
		model.IsThrottled(err),
		model.IsContextOverflow(err),
		stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &WrappedTurnError{Err: err, RequestState: tc.RequestState}
	}
}

func (l *Loop) meta(turnID string, cycle int) events.EventMetadata {
	return events.EventMetadata{ID: uuid.New(), TurnID: turnID, Cycle: cycle}
}
