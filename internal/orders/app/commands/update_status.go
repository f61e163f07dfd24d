package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// ErrCancelViaUpdate rejects attempts to cancel through the generic status
// update. Cancellation restores stock and must go through the cancel
// operation.
var ErrCancelViaUpdate = errors.New("cancellation must go through the cancel operation")

// UpdateStatusCommand moves an order along its lifecycle.
type UpdateStatusCommand struct {
	OrderID   string
	NewStatus domain.OrderStatus
}

func (c UpdateStatusCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	if !domain.IsValidStatus(c.NewStatus) {
		return errors.New("status is not a known order status")
	}
	if c.NewStatus == domain.StatusCancelled {
		return ErrCancelViaUpdate
	}
	return nil
}

// UpdateStatusCommandHandler validates the transition against the status
// table and persists it. No transition handled here touches stock.
type UpdateStatusCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
}

func NewUpdateStatusCommandHandler(repo ports.OrderRepository, events ports.EventBus) *UpdateStatusCommandHandler {
	return &UpdateStatusCommandHandler{repo: repo, events: events}
}

func (h *UpdateStatusCommandHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, cmd.NewStatus) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: cmd.NewStatus}
	}

	now := time.Now().UTC()
	update := ports.StatusUpdate{Status: cmd.NewStatus}
	if cmd.NewStatus == domain.StatusDelivered {
		update.Delivered = true
		update.DeliveredAt = &now
	}

	if err := h.repo.UpdateStatus(ctx, order.ID, update); err != nil {
		return nil, err
	}

	order.Status = cmd.NewStatus
	order.UpdatedAt = now
	if update.Delivered {
		order.IsDelivered = true
		order.DeliveredAt = update.DeliveredAt
	}

	if err := h.events.PublishOrderStatusChanged(ctx, order.ID, order.Status); err != nil {
		return order, fmt.Errorf("status updated but failed to publish event: %w", err)
	}

	return order, nil
}
