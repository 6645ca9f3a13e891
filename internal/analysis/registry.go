package analysis

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// DefaultAnalyzer is the analyzer used when none is named.
const DefaultAnalyzer = "standard"

var (
	ErrUnknownAnalyzer = errors.New("analysis: unknown analyzer")
	ErrAnalyzerExists  = errors.New("analysis: analyzer already registered")
)

// Registry maps analyzer names to instances. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
}

// NewRegistry creates a Registry with the built-in analyzers registered.
func NewRegistry() *Registry {
	return &Registry{
		analyzers: map[string]Analyzer{
			"standard":   NewStandardAnalyzer(),
			"whitespace": NewWhitespaceAnalyzer(),
			"keyword":    NewKeywordAnalyzer(),
		},
	}
}

// Get returns the analyzer registered under name.
func (r *Registry) Get(name string) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, name)
	}
	return a, nil
}

// Register adds a custom analyzer to the registry.
func (r *Registry) Register(name string, a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("%w: %q", ErrAnalyzerExists, name)
	}
	r.analyzers[name] = a
	return nil
}

// Names returns the registered analyzer names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
