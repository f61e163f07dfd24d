package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/bookstore/internal/orders/domain"
)

// Catalog is an in-memory catalog store. It honors the same contract as the
// postgres adapter: stock adjustments are atomic, and a decrement that would
// leave stock negative is rejected against the latest committed value.
type Catalog struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

// NewCatalog constructs a catalog pre-loaded with the given products.
func NewCatalog(products ...domain.Product) *Catalog {
	c := &Catalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// GetProduct fetches a product by identifier.
func (c *Catalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.products[id]
	if !ok {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	copy := product
	return &copy, nil
}

// AdjustStock applies delta under the store's lock, rejecting any change that
// would drive stock negative.
func (c *Catalog) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.products[id]
	if !ok {
		return 0, &domain.ProductNotFoundError{ProductID: id}
	}

	next := product.Stock + delta
	if next < 0 {
		return 0, &domain.OutOfStockError{
			ProductID: id,
			Available: product.Stock,
			Requested: -delta,
		}
	}

	product.Stock = next
	c.products[id] = product
	return next, nil
}

// RemoveProduct deletes a product, simulating concurrent catalog deletion.
func (c *Catalog) RemoveProduct(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

// StockLevel reports the current stock for assertions in tests.
func (c *Catalog) StockLevel(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}
