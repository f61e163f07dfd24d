package ports

import (
	"context"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// CatalogStore is the contract consumed from the product catalog. AdjustStock
// is the single concurrency-safety mechanism the order core relies on: the
// store applies the delta atomically, rejecting any change that would leave
// stock negative, with the precondition evaluated against the latest
// committed value. The core never reads stock to decide whether to decrement.
type CatalogStore interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// AdjustStock applies delta to the product's stock and returns the new
	// level. A negative delta that would drive stock below zero is rejected
	// with *domain.OutOfStockError; an unknown product yields
	// *domain.ProductNotFoundError.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
