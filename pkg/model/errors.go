package model

import (
	"errors"
	"fmt"
	"time"
)

// ThrottledError signals that the provider rate-limited the request. It is
// transient: the turn loop retries it with exponential backoff before
// surfacing it.
type ThrottledError struct {
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ThrottledError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model throttled: %s", e.Message)
	}
	return "model throttled"
}

func (e *ThrottledError) Unwrap() error {
	return e.Err
}

// ContextOverflowError signals that the request exceeded the model's context
// window. The turn loop recovers once by truncating oversized tool results
// before surfacing it.
type ContextOverflowError struct {
	Message string
	Err     error
}

func (e *ContextOverflowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("context window overflow: %s", e.Message)
	}
	return "context window overflow"
}

func (e *ContextOverflowError) Unwrap() error {
	return e.Err
}

// IsThrottled reports whether err is (or wraps) a throttling signal.
func IsThrottled(err error) bool {
	var target *ThrottledError
	return errors.As(err, &target)
}

// IsContextOverflow reports whether err is (or wraps) a context window
// overflow signal.
func IsContextOverflow(err error) bool {
	var target *ContextOverflowError
	return errors.As(err, &target)
}
