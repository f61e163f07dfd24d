package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// CompensationLog keeps unresolved compensation entries in memory.
type CompensationLog struct {
	mu      sync.Mutex
	entries []ports.CompensationEntry
}

// NewCompensationLog constructs an empty in-memory compensation log.
func NewCompensationLog() *CompensationLog {
	return &CompensationLog{}
}

// Record appends an unresolved compensation entry.
func (l *CompensationLog) Record(_ context.Context, entry ports.CompensationEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// ListUnresolved returns all recorded entries.
func (l *CompensationLog) ListUnresolved(_ context.Context) ([]ports.CompensationEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := make([]ports.CompensationEntry, len(l.entries))
	copy(copied, l.entries)
	return copied, nil
}
