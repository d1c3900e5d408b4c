package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/davidbz/ideaforge/internal/domain"
)

// Registry implements the AnalyzerRegistry interface.
type Registry struct {
	mu          sync.RWMutex
	analyzers   map[string]domain.Analyzer
	defaultName string
}

// NewRegistry creates a new analyzer registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:        sync.RWMutex{},
		analyzers: make(map[string]domain.Analyzer),
	}
}

// Register adds an analyzer to the registry. The first analyzer registered
// becomes the default.
func (r *Registry) Register(_ context.Context, analyzer domain.Analyzer) error {
	if analyzer == nil {
		return errors.New("analyzer cannot be nil")
	}

	name := analyzer.Name()
	if name == "" {
		return errors.New("analyzer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("analyzer %s already registered", name)
	}

	r.analyzers[name] = analyzer
	if r.defaultName == "" {
		r.defaultName = name
	}

	return nil
}

// SetDefault selects the analyzer returned for an empty name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.analyzers[name]; !exists {
		return fmt.Errorf("analyzer %s not found", name)
	}
	r.defaultName = name
	return nil
}

// Get retrieves an analyzer by name; an empty name selects the default.
func (r *Registry) Get(_ context.Context, name string) (domain.Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultName
		if name == "" {
			return nil, errors.New("no analyzers registered")
		}
	}

	analyzer, exists := r.analyzers[name]
	if !exists {
		return nil, fmt.Errorf("analyzer %s not found", name)
	}

	return analyzer, nil
}

// List returns all registered analyzer names in sorted order.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
