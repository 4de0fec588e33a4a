package processors

import (
	"fmt"
	"sort"
	"sync"

	"webhook-notifier/internal/common/errors"
)

// Registry maps source identifiers to their processors. Registration happens
// at startup; lookups happen on every request.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[string]Processor),
	}
}

// Register adds a processor. Registering the same source twice is a wiring
// bug and returns an error rather than silently replacing the first.
func (r *Registry) Register(p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := p.Source()
	if _, exists := r.processors[source]; exists {
		return errors.ConfigError(fmt.Sprintf("processor already registered for source %q", source))
	}
	r.processors[source] = p
	return nil
}

// Get returns the processor for a source.
func (r *Registry) Get(source string) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.processors[source]
	if !ok {
		return nil, errors.UnknownSourceError(source)
	}
	return p, nil
}

// Sources returns the registered source identifiers, sorted.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.processors))
	for source := range r.processors {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
