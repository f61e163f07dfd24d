package postgres

import (
	"context"
	"fmt"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartStore adapts the cart_lines table to the cart store port.
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

func (s *CartStore) ReadCart(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	query := `
		SELECT product_id, name, quantity, unit_price_cents, image
		FROM cart_lines
		WHERE customer_id = $1
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.UnitPrice, &line.Image); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	return lines, nil
}

func (s *CartStore) ClearCart(ctx context.Context, customerID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
