package postgres

import (
	"context"
	"fmt"

	"github.com/dejobratic/bookstore/internal/orders/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompensationLog persists unresolved compensating stock writes in the
// stock_compensations table for operator reconciliation.
type CompensationLog struct {
	pool *pgxpool.Pool
}

func NewCompensationLog(pool *pgxpool.Pool) *CompensationLog {
	return &CompensationLog{pool: pool}
}

func (l *CompensationLog) Record(ctx context.Context, entry ports.CompensationEntry) error {
	query := `
		INSERT INTO stock_compensations (order_ref, product_id, quantity, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := l.pool.Exec(ctx, query, entry.OrderRef, entry.ProductID, entry.Quantity, entry.Reason, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert compensation entry: %w", err)
	}

	return nil
}

func (l *CompensationLog) ListUnresolved(ctx context.Context) ([]ports.CompensationEntry, error) {
	query := `
		SELECT order_ref, product_id, quantity, reason, occurred_at
		FROM stock_compensations
		WHERE resolved = FALSE
		ORDER BY occurred_at
	`

	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query compensation entries: %w", err)
	}
	defer rows.Close()

	var entries []ports.CompensationEntry
	for rows.Next() {
		var entry ports.CompensationEntry
		if err := rows.Scan(&entry.OrderRef, &entry.ProductID, &entry.Quantity, &entry.Reason, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan compensation entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compensation entries: %w", err)
	}

	return entries, nil
}
