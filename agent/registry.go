package agent

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrUnknownAgent = errors.New("unknown agent")

// Registry maps agent names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	if name == "" || factory == nil {
		panic("agent registration needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

func (r *Registry) New(name string) (Agent, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownAgent, name, r.Names())
	}
	return factory(), nil
}

// Clone returns a registry holding the same factories. Registering into the
// clone leaves r untouched.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	for name, factory := range r.factories {
		clone.factories[name] = factory
	}
	return clone
}

// Names lists registered agents in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default holds the built-in agents.
var Default = NewRegistry()

func init() {
	Default.Register("random", func() Agent { return NewRandomAgent(0) })
	Default.Register("greedy", func() Agent { return NewGreedyAgent(nil) })
	Default.Register("scripted", func() Agent { return NewScriptedAgent() })
}
