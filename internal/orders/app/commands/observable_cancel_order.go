package commands

import (
	"context"
	"log/slog"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/metrics"
	"github.com/dejobratic/bookstore/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCancelOrderHandler struct {
	handler CancelOrderHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCancelOrderHandler(handler CancelOrderHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCancelOrderHandler {
	return &ObservableCancelOrderHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCancelOrderHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, []domain.ItemRestoration, error) {
	ctx, span := telemetry.StartSpan(ctx, "CancelOrderCommand.Handle")
	defer span.End()

	var success bool
	defer func() {
		o.metrics.RecordOrderCancelled(ctx, success)
	}()

	o.logger.InfoContext(ctx, "cancelling order",
		"order_id", cmd.OrderID,
		"requester_id", cmd.RequesterID,
		"requester_is_admin", cmd.RequesterIsAdmin,
	)

	order, report, err := o.handler.Handle(ctx, cmd)

	for _, item := range report {
		if item.Outcome == domain.RestorationFailed {
			o.metrics.RecordCompensationFailure(ctx)
			o.logger.ErrorContext(ctx, "unresolved stock restoration",
				"order_id", cmd.OrderID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"detail", item.Detail,
			)
		}
	}

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to cancel order",
			"error", err,
			"order_id", cmd.OrderID,
		)
		return order, report, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.Int("restoration.items", len(report)),
	)

	o.logger.InfoContext(ctx, "order cancelled successfully",
		"order_id", order.ID,
		"restored_items", len(report),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, report, nil
}
