package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// CartStore holds per-customer cart snapshots in memory.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartLine
}

// NewCartStore constructs an empty in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]domain.CartLine)}
}

// SetCart replaces a customer's cart contents.
func (s *CartStore) SetCart(customerID string, lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]domain.CartLine, len(lines))
	copy(copied, lines)
	s.carts[customerID] = copied
}

// ReadCart returns the customer's current cart lines.
func (s *CartStore) ReadCart(_ context.Context, customerID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.carts[customerID]
	copied := make([]domain.CartLine, len(lines))
	copy(copied, lines)
	return copied, nil
}

// ClearCart empties the customer's cart.
func (s *CartStore) ClearCart(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
	return nil
}
