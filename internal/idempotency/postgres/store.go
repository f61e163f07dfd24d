package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/bookstore/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.PlacementRecord, error) {
	query := `
		SELECT order_id
		FROM idempotency_keys
		WHERE key = $1
	`

	var record ports.PlacementRecord
	err := s.pool.QueryRow(ctx, query, key).Scan(&record.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select idempotency key: %w", err)
	}

	return &record, nil
}

func (s *Store) Save(ctx context.Context, key string, record ports.PlacementRecord) error {
	query := `
		INSERT INTO idempotency_keys (key, order_id)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, key, record.OrderID)
	if err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}

	return nil
}
