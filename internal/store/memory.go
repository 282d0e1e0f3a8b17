package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process blob backend. The aggregator uses two
// instances: one as the cache tier (a copy of the last good read or write)
// and one as the local tier (increments that never reached a durable
// store). Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob at key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of the blob at key.
func (s *MemoryStore) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes the blob at key. Used when clearing stats so stale local
// copies do not resurface through the fallback chain.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
}
