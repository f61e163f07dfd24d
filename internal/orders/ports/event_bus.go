package ports

import (
	"context"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, orderID string) error
	PublishOrderStatusChanged(ctx context.Context, orderID string, status domain.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, orderID string) error
}
