package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// ConfirmPaymentCommand flips the payment flag on an order. This is a pure
// bookkeeping operation available to administrators regardless of order
// status; it has no stock interaction.
type ConfirmPaymentCommand struct {
	OrderID string
	IsPaid  bool
}

func (c ConfirmPaymentCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type ConfirmPaymentCommandHandler struct {
	repo ports.OrderRepository
}

func NewConfirmPaymentCommandHandler(repo ports.OrderRepository) *ConfirmPaymentCommandHandler {
	return &ConfirmPaymentCommandHandler{repo: repo}
}

func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	if cmd.IsPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	if err := h.repo.UpdatePayment(ctx, order.ID, cmd.IsPaid, paidAt); err != nil {
		return nil, err
	}

	order.IsPaid = cmd.IsPaid
	order.PaidAt = paidAt
	order.UpdatedAt = time.Now().UTC()

	return order, nil
}
