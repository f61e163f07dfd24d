package ports

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) error
	UpdatePayment(ctx context.Context, id string, isPaid bool, paidAt *time.Time) error
}

// StatusUpdate carries a status change plus the delivery stamp that
// accompanies a transition into Delivered.
type StatusUpdate struct {
	Status      domain.OrderStatus
	Delivered   bool
	DeliveredAt *time.Time
}

// ListFilter narrows list queries by customer, status, and pagination.
type ListFilter struct {
	CustomerID string
	Status     *domain.OrderStatus
	Page       int
	PageSize   int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)
