package ports

import (
	"context"
	"time"
)

// CompensationEntry records a compensating stock write that could not be
// applied. These are data, not log lines: operators reconcile them manually,
// and the system never retries them on its own.
type CompensationEntry struct {
	OrderRef   string
	ProductID  string
	Quantity   int
	Reason     string
	OccurredAt time.Time
}

// CompensationLog persists unresolved compensation entries for operator review.
type CompensationLog interface {
	Record(ctx context.Context, entry CompensationEntry) error
	ListUnresolved(ctx context.Context) ([]CompensationEntry, error)
}
