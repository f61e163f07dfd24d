package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 2 * time.Second

// CheckHealth verifies the database is reachable. It backs the readiness
// probe, so it bounds its own timeout rather than trusting the caller's.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return pool.Ping(ctx)
}
