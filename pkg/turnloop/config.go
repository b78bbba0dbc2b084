package turnloop

import "time"

// LoopConfig bounds one turn execution: how many model/tool cycles it may
// run and how throttling retries back off.
type LoopConfig struct {
	// MaxIterations caps the number of model invocations per turn.
	MaxIterations int
	// MaxAttempts caps attempts of a single model invocation under
	// throttling, including the first one.
	MaxAttempts int
	// InitialBackoff is the first throttling delay; it doubles per retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the doubling.
	MaxBackoff time.Duration
	// WindowSize bounds the history after the turn completes.
	WindowSize int
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxIterations:  25,
		MaxAttempts:    6,
		InitialBackoff: 4 * time.Second,
		MaxBackoff:     240 * time.Second,
		WindowSize:     40,
	}
}

func (c LoopConfig) WithMaxIterations(n int) LoopConfig {
	c.MaxIterations = n
	return c
}

func (c LoopConfig) WithMaxAttempts(n int) LoopConfig {
	c.MaxAttempts = n
	return c
}

func (c LoopConfig) WithBackoff(initial, max time.Duration) LoopConfig {
	c.InitialBackoff = initial
	c.MaxBackoff = max
	return c
}

func (c LoopConfig) WithWindowSize(n int) LoopConfig {
	c.WindowSize = n
	return c
}
