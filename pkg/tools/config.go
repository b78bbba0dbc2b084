package tools

import "time"

// Config controls how tool calls from a single assistant message are executed.
type Config struct {
	// MaxParallel caps the number of tool calls running at once.
	// Values <= 1 mean strictly sequential execution.
	MaxParallel int
	// Timeout applies to each individual tool call.
	Timeout time.Duration
	// AllowedTools restricts which registered tools may be invoked.
	// Empty means every registered tool is allowed.
	AllowedTools []string
}

func DefaultConfig() Config {
	return Config{
		MaxParallel: 1,
		Timeout:     5 * time.Minute,
	}
}

func (c Config) WithMaxParallel(n int) Config {
	c.MaxParallel = n
	return c
}

func (c Config) WithTimeout(d time.Duration) Config {
	c.Timeout = d
	return c
}

func (c Config) WithAllowedTools(names ...string) Config {
	c.AllowedTools = names
	return c
}

// IsToolAllowed reports whether the named tool passes the allow-list.
func (c Config) IsToolAllowed(name string) bool {
	if len(c.AllowedTools) == 0 {
		return true
	}
	for _, allowed := range c.AllowedTools {
		if allowed == name {
			return true
		}
	}
	return false
}
