package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	queryDuration metric.Float64Histogram
	queriesTotal  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	m.queriesTotal, err = meter.Int64Counter(
		"db_queries_total",
		metric.WithDescription("Total database queries by operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_queries_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordQuery(ctx context.Context, operation string, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
	)

	m.queryDuration.Record(ctx, durationSeconds, attrs)
	m.queriesTotal.Add(ctx, 1, attrs)
}

// RegisterPoolStats exposes connection pool gauges for the given pool.
// Values are sampled at collection time via pool.Stat().
func RegisterPoolStats(meter metric.Meter, pool *pgxpool.Pool) error {
	acquired, err := meter.Int64ObservableGauge(
		"db_pool_acquired_connections",
		metric.WithDescription("Connections currently checked out of the pool"),
	)
	if err != nil {
		return fmt.Errorf("create db_pool_acquired_connections gauge: %w", err)
	}

	idle, err := meter.Int64ObservableGauge(
		"db_pool_idle_connections",
		metric.WithDescription("Idle connections held by the pool"),
	)
	if err != nil {
		return fmt.Errorf("create db_pool_idle_connections gauge: %w", err)
	}

	total, err := meter.Int64ObservableGauge(
		"db_pool_total_connections",
		metric.WithDescription("Total connections managed by the pool"),
	)
	if err != nil {
		return fmt.Errorf("create db_pool_total_connections gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stat := pool.Stat()
		o.ObserveInt64(acquired, int64(stat.AcquiredConns()))
		o.ObserveInt64(idle, int64(stat.IdleConns()))
		o.ObserveInt64(total, int64(stat.TotalConns()))
		return nil
	}, acquired, idle, total)
	if err != nil {
		return fmt.Errorf("register pool stats callback: %w", err)
	}

	return nil
}
