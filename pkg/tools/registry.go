package tools

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry holds the tools available to a turn.
type Registry interface {
	Register(tool *Definition) error
	Unregister(name string) error
	Get(name string) (*Definition, bool)
	List() []*Definition
	Count() int
}

// InMemoryRegistry is a thread-safe map-backed Registry.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	tools map[string]*Definition
}

var _ Registry = (*InMemoryRegistry)(nil)

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		tools: make(map[string]*Definition),
	}
}

func (r *InMemoryRegistry) Register(tool *Definition) error {
	if tool == nil {
		return errors.New("cannot register nil tool")
	}
	if tool.Name == "" {
		return errors.New("cannot register tool with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return errors.Errorf("tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

func (r *InMemoryRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		return errors.Errorf("tool %q not registered", name)
	}
	delete(r.tools, name)
	return nil
}

func (r *InMemoryRegistry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns the registered tools sorted by name.
func (r *InMemoryRegistry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		list = append(list, tool)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *InMemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
