// Package memory provides the in-process exact-match store used by the
// response cache.
package memory

import (
	"context"
	"sync"
)

// Store is a map guarded by a reader/writer lock. It implements
// domain.ExactStore for any value type.
type Store[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// NewStore creates an empty store.
func NewStore[V any]() *Store[V] {
	return &Store[V]{
		mu:    sync.RWMutex{},
		items: make(map[string]V),
	}
}

// Get returns the value stored under key.
func (s *Store[V]) Get(_ context.Context, key string) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok, nil
}

// Set inserts or overwrites key.
func (s *Store[V]) Set(_ context.Context, key string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// Remove deletes key and reports whether it existed.
func (s *Store[V]) Remove(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[key]
	delete(s.items, key)
	return ok, nil
}

// Clear drops every entry.
func (s *Store[V]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]V)
	return nil
}

// Len returns the number of entries.
func (s *Store[V]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items), nil
}
