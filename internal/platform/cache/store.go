package cache

import (
	"context"
	"sync"
)

// Store is an in-process key/value cache. Entries live as long as the store.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

func NewStore[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]V),
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if s == nil || key == "" {
		return zero, false
	}

	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}

	return value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if s == nil || key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}
