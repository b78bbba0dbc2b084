// Package metrics accumulates per-turn execution statistics: cycle counts
// and durations, token usage, model latency and per-tool call tallies.
package metrics

import (
	"sync"
	"time"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

// ToolMetrics aggregates the calls made to a single tool during a turn.
type ToolMetrics struct {
	CallCount     int           `json:"call_count" yaml:"call_count"`
	SuccessCount  int           `json:"success_count" yaml:"success_count"`
	ErrorCount    int           `json:"error_count" yaml:"error_count"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
}

// Metrics is the per-turn accumulator. Safe for concurrent use so parallel
// tool workers can report into it.
type Metrics struct {
	mu sync.Mutex

	CycleCount           int                     `json:"cycle_count" yaml:"cycle_count"`
	CycleDurations       []time.Duration         `json:"cycle_durations" yaml:"cycle_durations"`
	AccumulatedUsage     chat.Usage              `json:"accumulated_usage" yaml:"accumulated_usage"`
	AccumulatedLatencyMs int64                   `json:"accumulated_latency_ms" yaml:"accumulated_latency_ms"`
	Tools                map[string]*ToolMetrics `json:"tools,omitempty" yaml:"tools,omitempty"`
}

func New() *Metrics {
	return &Metrics{
		Tools: make(map[string]*ToolMetrics),
	}
}

// AddCycle records one completed event-loop cycle.
func (m *Metrics) AddCycle(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CycleCount++
	m.CycleDurations = append(m.CycleDurations, duration)
}

// AddUsage folds one model invocation's token usage and latency into the
// running totals.
func (m *Metrics) AddUsage(usage chat.Usage, latencyMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AccumulatedUsage.Add(usage)
	m.AccumulatedLatencyMs += latencyMs
}

// AddToolCall records one tool invocation outcome.
func (m *Metrics) AddToolCall(name string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.Tools[name]
	if !ok {
		tm = &ToolMetrics{}
		m.Tools[name] = tm
	}
	tm.CallCount++
	if success {
		tm.SuccessCount++
	} else {
		tm.ErrorCount++
	}
	tm.TotalDuration += duration
}

// TotalDuration sums the recorded cycle durations.
func (m *Metrics) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total time.Duration
	for _, d := range m.CycleDurations {
		total += d
	}
	return total
}
