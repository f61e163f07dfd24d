package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
	"github.com/google/uuid"
)

// PlaceOrderCommand carries everything checkout needs besides the cart
// itself, which is read from the cart store at execution time. DeclaredTotal
// is the price computed upstream and is recorded as-is.
type PlaceOrderCommand struct {
	CustomerID      string
	Shipping        domain.ShippingInfo
	PaymentMethod   domain.PaymentMethod
	BankTransferRef string
	DeclaredTotal   int64
}

func (c PlaceOrderCommand) Validate() error {
	if strings.TrimSpace(c.CustomerID) == "" {
		return errors.New("customer_id is required")
	}
	if c.PaymentMethod != domain.PaymentCOD && c.PaymentMethod != domain.PaymentBank {
		return errors.New("payment_method must be COD or BANK")
	}
	if c.DeclaredTotal < 0 {
		return errors.New("total_price_cents must not be negative")
	}
	return nil
}

// PlaceOrderHandler is the interface implemented by the core handler and its
// observability decorator.
type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

// PlaceOrderCommandHandler converts a cart into a durable order. Stock is
// reserved one line at a time through the catalog store's atomic conditional
// decrement; if any line is rejected, every decrement already applied is
// reversed before the error is returned, so a failed placement leaves no
// order record and no net stock change.
type PlaceOrderCommandHandler struct {
	repo          ports.OrderRepository
	catalog       ports.CatalogStore
	cart          ports.CartStore
	compensations ports.CompensationLog
	events        ports.EventBus
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	catalog ports.CatalogStore,
	cart ports.CartStore,
	compensations ports.CompensationLog,
	events ports.EventBus,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:          repo,
		catalog:       catalog,
		cart:          cart,
		compensations: compensations,
		events:        events,
	}
}

func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	lines, err := h.cart.ReadCart(ctx, cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Reserve stock line by line, in cart order. applied tracks the lines
	// whose decrement succeeded so a later rejection can be compensated.
	var applied []domain.CartLine
	for _, line := range lines {
		if _, err := h.catalog.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			if rbErr := h.rollback(ctx, applied); rbErr != nil {
				return nil, rbErr
			}
			return nil, err
		}
		applied = append(applied, line)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerID:    cmd.CustomerID,
		LineItems:     toLineItems(lines),
		Shipping:      cmd.Shipping,
		PaymentMethod: cmd.PaymentMethod,
		TotalPrice:    cmd.DeclaredTotal,
		Status:        domain.StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if cmd.PaymentMethod == domain.PaymentBank {
		order.IsPaid = true
		order.PaidAt = &now
		order.BankTransferRef = cmd.BankTransferRef
	}

	if err := order.Validate(); err != nil {
		if rbErr := h.rollback(ctx, applied); rbErr != nil {
			return nil, rbErr
		}
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		if rbErr := h.rollback(ctx, applied); rbErr != nil {
			return nil, rbErr
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := h.cart.ClearCart(ctx, cmd.CustomerID); err != nil {
		return &order, fmt.Errorf("order placed but failed to clear cart: %w", err)
	}

	if err := h.events.PublishOrderPlaced(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order placed but failed to publish event: %w", err)
	}

	return &order, nil
}

// rollback reverses previously applied decrements in reverse order. An
// increment that cannot be applied is recorded as an unresolved compensation
// entry and reported as a CompensationFailedError; the remaining increments
// are still attempted so the inconsistency is as small as possible.
func (h *PlaceOrderCommandHandler) rollback(ctx context.Context, applied []domain.CartLine) error {
	var failed error
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		_, err := h.catalog.AdjustStock(ctx, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}

		entry := ports.CompensationEntry{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			Reason:     fmt.Sprintf("rollback of failed placement: %v", err),
			OccurredAt: time.Now().UTC(),
		}
		// Recording can itself fail; the returned error already marks the
		// inconsistency, so the entry is best-effort.
		_ = h.compensations.Record(ctx, entry)

		if failed == nil {
			failed = &domain.CompensationFailedError{ProductID: line.ProductID, Err: err}
		}
	}
	return failed
}

func toLineItems(lines []domain.CartLine) []domain.OrderLineItem {
	items := make([]domain.OrderLineItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Image:     line.Image,
		}
	}
	return items
}
