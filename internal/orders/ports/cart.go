package ports

import (
	"context"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// CartStore is the contract consumed from the cart collaborator. The cart is
// read once at checkout and cleared after the order is durably persisted.
type CartStore interface {
	ReadCart(ctx context.Context, customerID string) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, customerID string) error
}
