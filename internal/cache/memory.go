package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Used as the default backend and in
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int]Entry)}
}

// Get returns the entry for id.
func (s *MemoryStore) Get(_ context.Context, id int) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok, nil
}

// Set writes the entry for id.
func (s *MemoryStore) Set(_ context.Context, id int, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = e
	return nil
}

// Clear drops all entries.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[int]Entry)
	return nil
}
