package store

import (
	"context"
	"sync"

	"github.com/probelab/recallbench/core"
)

// InMemoryStore is a volatile ItemStore implementation holding items in a
// process local map. It is safe for concurrent access and best suited for
// tests or diagnostic runs. Returned slices are copies to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[core.CollectionKey][]core.EvidenceItem
}

// NewInMemoryStore constructs an empty in-memory item store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[core.CollectionKey][]core.EvidenceItem)}
}

// Append implements core.ItemStore.
func (s *InMemoryStore) Append(_ context.Context, key core.CollectionKey, item core.EvidenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append(s.items[key], item)
	return nil
}

// Count implements core.ItemStore.
func (s *InMemoryStore) Count(_ context.Context, key core.CollectionKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[key]), nil
}

// Load implements core.ItemStore.
func (s *InMemoryStore) Load(_ context.Context, key core.CollectionKey) ([]core.EvidenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.EvidenceItem, len(s.items[key]))
	copy(out, s.items[key])
	return out, nil
}
