package turnloop

import "fmt"

// ConfigurationError marks a caller programming error, such as a model
// requesting tools when no registry was configured. It is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// MaxIterationsError is returned when a turn keeps requesting tools past
// the configured iteration cap.
type MaxIterationsError struct {
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("turn exceeded %d iterations", e.Limit)
}

// WrappedTurnError wraps an unclassified failure together with the request
// state accumulated up to the point of failure, so callers can recover
// partial progress.
type WrappedTurnError struct {
	Err          error
	RequestState map[string]any
}

func (e *WrappedTurnError) Error() string {
	return fmt.Sprintf("turn failed: %v", e.Err)
}

func (e *WrappedTurnError) Unwrap() error {
	return e.Err
}
