package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Span is one node of a turn's execution trace. A turn span has one child
// per cycle, a cycle span has children for the model invocation and each
// tool invocation.
type Span struct {
	mu sync.Mutex

	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Start    time.Time      `json:"start" yaml:"start"`
	EndTime  time.Time      `json:"end,omitempty" yaml:"end,omitempty"`
	Children []*Span        `json:"children,omitempty" yaml:"children,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

func NewSpan(name string) *Span {
	return &Span{
		ID:    uuid.NewString(),
		Name:  name,
		Start: time.Now(),
	}
}

// StartChild opens a child span under s.
func (s *Span) StartChild(name string) *Span {
	child := NewSpan(name)
	s.mu.Lock()
	s.Children = append(s.Children, child)
	s.mu.Unlock()
	return child
}

// SetAttr attaches a key/value attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Attrs == nil {
		s.Attrs = make(map[string]any)
	}
	s.Attrs[key] = value
}

// End closes the span. Calling End more than once keeps the first end time.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EndTime.IsZero() {
		s.EndTime = time.Now()
	}
}

// Duration returns the elapsed time of the span, using now for spans that
// have not ended yet.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EndTime.IsZero() {
		return time.Since(s.Start)
	}
	return s.EndTime.Sub(s.Start)
}
