package ports

import "context"

// PlacementRecord links an idempotency key to the order it produced, so a
// retried submission is answered with the original order instead of running
// the reservation algorithm again.
type PlacementRecord struct {
	OrderID string
}

// IdempotencyStore ensures order placement can be retried safely.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*PlacementRecord, error)
	Save(ctx context.Context, key string, record PlacementRecord) error
}
