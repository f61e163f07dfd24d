package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// Store retains placement records for replaying duplicate submissions.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.PlacementRecord
}

// NewStore creates a new in-memory idempotency store.
func NewStore() *Store {
	return &Store{items: make(map[string]ports.PlacementRecord)}
}

// Get returns the stored record for a given key if present.
func (s *Store) Get(_ context.Context, key string) (*ports.PlacementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	copy := value
	return &copy, nil
}

// Save stores the record for a key; the first write wins.
func (s *Store) Save(_ context.Context, key string, record ports.PlacementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; exists {
		return nil
	}
	s.items[key] = record
	return nil
}
