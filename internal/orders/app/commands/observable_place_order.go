package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/metrics"
	"github.com/dejobratic/bookstore/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservablePlaceOrderHandler struct {
	handler PlaceOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservablePlaceOrderHandler(handler PlaceOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservablePlaceOrderHandler {
	return &ObservablePlaceOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservablePlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlaceOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordPlacementDuration(ctx, duration)
		o.metrics.RecordOrderPlaced(ctx, success)
	}()

	o.logger.InfoContext(ctx, "placing order",
		"customer_id", cmd.CustomerID,
		"payment_method", cmd.PaymentMethod,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)

		var outOfStock *domain.OutOfStockError
		var compFailed *domain.CompensationFailedError
		switch {
		case errors.As(err, &compFailed):
			// A stock-count inconsistency now exists; this is logged
			// distinctly so operators can reconcile it.
			o.metrics.RecordCompensationFailure(ctx)
			o.logger.ErrorContext(ctx, "unresolved stock compensation",
				"error", err,
				"product_id", compFailed.ProductID,
				"customer_id", cmd.CustomerID,
			)
		case errors.As(err, &outOfStock):
			o.metrics.RecordStockRejection(ctx)
			o.logger.InfoContext(ctx, "placement rejected for insufficient stock",
				"product_id", outOfStock.ProductID,
				"available", outOfStock.Available,
				"requested", outOfStock.Requested,
				"customer_id", cmd.CustomerID,
			)
		default:
			o.logger.ErrorContext(ctx, "failed to place order",
				"error", err,
				"customer_id", cmd.CustomerID,
			)
		}
		return order, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.customer_id", order.CustomerID),
		attribute.Int("order.line_items", len(order.LineItems)),
		attribute.Int64("order.total_price_cents", order.TotalPrice),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order placed successfully",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"line_items", len(order.LineItems),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
