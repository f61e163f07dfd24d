package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal         metric.Int64Counter
	orderPlacementDuration    metric.Float64Histogram
	ordersCancelledTotal      metric.Int64Counter
	stockRejectionsTotal      metric.Int64Counter
	compensationFailuresTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of order placement attempts"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementDuration, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.ordersCancelledTotal, err = meter.Int64Counter(
		"orders_cancelled_total",
		metric.WithDescription("Total number of order cancellation attempts"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_cancelled_total counter: %w", err)
	}

	m.stockRejectionsTotal, err = meter.Int64Counter(
		"stock_rejections_total",
		metric.WithDescription("Total number of placements rejected for insufficient stock"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stock_rejections_total counter: %w", err)
	}

	m.compensationFailuresTotal, err = meter.Int64Counter(
		"stock_compensation_failures_total",
		metric.WithDescription("Total number of compensating stock writes that could not be applied"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stock_compensation_failures_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordOrderCancelled(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersCancelledTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordStockRejection(ctx context.Context) {
	m.stockRejectionsTotal.Add(ctx, 1)
}

func (m *Metrics) RecordCompensationFailure(ctx context.Context) {
	m.compensationFailuresTotal.Add(ctx, 1)
}
