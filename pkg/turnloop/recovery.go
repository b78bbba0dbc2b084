package turnloop

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/model"
)

// RecoveryPolicy retries throttled model invocations with exponential
// backoff. Context overflow recovery lives in the loop itself since it
// edits the history rather than the invocation.
type RecoveryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func newRecoveryPolicy(cfg LoopConfig) RecoveryPolicy {
	return RecoveryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}
}

// Execute runs invoke up to MaxAttempts times. Only throttled errors are
// retried; onDelay is called before each backoff sleep with the delay about
// to be taken and the attempt number that just failed. Any other error, and
// a throttled error on the last attempt, is returned as-is.
func (p RecoveryPolicy) Execute(ctx context.Context, onDelay func(delay time.Duration, attempt int), invoke func() error) error {
	delay := p.InitialBackoff
	for attempt := 1; ; attempt++ {
		err := invoke()
		if err == nil || !model.IsThrottled(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			log.Warn().Int("attempts", attempt).Err(err).Msg("throttling retries exhausted")
			return err
		}
		log.Debug().
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("model throttled, backing off")
		if onDelay != nil {
			onDelay(delay, attempt)
		}
		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
		delay *= 2
		if delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
