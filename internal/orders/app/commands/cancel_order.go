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

// CancelOrderCommand requests cancellation of a Processing order on behalf of
// its owner or an administrator.
type CancelOrderCommand struct {
	OrderID          string
	RequesterID      string
	RequesterIsAdmin bool
}

func (c CancelOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	if strings.TrimSpace(c.RequesterID) == "" && !c.RequesterIsAdmin {
		return errors.New("requester_id is required")
	}
	return nil
}

// CancelOrderHandler is the interface implemented by the core handler and its
// observability decorator.
type CancelOrderHandler interface {
	Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, []domain.ItemRestoration, error)
}

// CancelOrderCommandHandler reverses a placement: it restores the quantities
// recorded in the order's line items and moves the order to Cancelled. The
// line items are the audit record; current product state never enters into
// how much stock to restore.
type CancelOrderCommandHandler struct {
	repo          ports.OrderRepository
	catalog       ports.CatalogStore
	compensations ports.CompensationLog
	events        ports.EventBus
}

func NewCancelOrderCommandHandler(
	repo ports.OrderRepository,
	catalog ports.CatalogStore,
	compensations ports.CompensationLog,
	events ports.EventBus,
) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{
		repo:          repo,
		catalog:       catalog,
		compensations: compensations,
		events:        events,
	}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, []domain.ItemRestoration, error) {
	if err := cmd.Validate(); err != nil {
		return nil, nil, err
	}

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, nil, err
	}

	if !cmd.RequesterIsAdmin && order.CustomerID != cmd.RequesterID {
		return nil, nil, domain.ErrUnauthorized
	}

	// Only a Processing order is cancellable; anything further along has
	// already committed its stock to fulfilment.
	if order.Status != domain.StatusProcessing {
		return nil, nil, &domain.InvalidTransitionError{From: order.Status, To: domain.StatusCancelled}
	}

	report := h.restoreStock(ctx, order)

	if err := h.repo.UpdateStatus(ctx, order.ID, ports.StatusUpdate{Status: domain.StatusCancelled}); err != nil {
		return nil, report, fmt.Errorf("mark order cancelled: %w", err)
	}

	order.Status = domain.StatusCancelled
	order.UpdatedAt = time.Now().UTC()

	if err := h.events.PublishOrderCancelled(ctx, order.ID); err != nil {
		return order, report, fmt.Errorf("order cancelled but failed to publish event: %w", err)
	}

	return order, report, nil
}

// restoreStock applies an unconditional increment per line item. A missing
// product is reported and skipped rather than aborting the cancellation;
// other failures additionally leave an unresolved compensation entry.
func (h *CancelOrderCommandHandler) restoreStock(ctx context.Context, order *domain.Order) []domain.ItemRestoration {
	report := make([]domain.ItemRestoration, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		restoration := domain.ItemRestoration{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Outcome:   domain.RestorationRestored,
		}

		_, err := h.catalog.AdjustStock(ctx, item.ProductID, item.Quantity)

		var notFound *domain.ProductNotFoundError
		switch {
		case err == nil:
		case errors.As(err, &notFound):
			restoration.Outcome = domain.RestorationNotFound
			restoration.Detail = err.Error()
		default:
			restoration.Outcome = domain.RestorationFailed
			restoration.Detail = err.Error()
			_ = h.compensations.Record(ctx, ports.CompensationEntry{
				OrderRef:   order.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				Reason:     fmt.Sprintf("stock restoration on cancellation: %v", err),
				OccurredAt: time.Now().UTC(),
			})
		}

		report = append(report, restoration)
	}
	return report
}
