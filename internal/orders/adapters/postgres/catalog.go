package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalog adapts the products table to the catalog store port. The stock
// adjustment is a single conditional UPDATE, so the non-negative precondition
// is evaluated by the database against the latest committed value; the order
// core never reads stock into memory to decide whether to decrement.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, author, price_cents, image, stock
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Author,
		&product.Price,
		&product.Image,
		&product.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ProductNotFoundError{ProductID: id}
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &product, nil
}

func (c *Catalog) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`

	var newStock int
	err := c.pool.QueryRow(ctx, query, id, delta).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	// The UPDATE matched nothing: either the product is gone or the decrement
	// was rejected. The follow-up read is only for error detail; the rejected
	// request retries against whatever level it observes next.
	var available int
	err = c.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &domain.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("read stock after rejected adjustment: %w", err)
	}

	return 0, &domain.OutOfStockError{ProductID: id, Available: available, Requested: -delta}
}
