package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dejobratic/bookstore/internal/orders/app/commands"
	"github.com/dejobratic/bookstore/internal/orders/app/queries"
	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/metrics"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// Service bundles the order placement and lifecycle use cases consumed by the
// API layer.
type Service struct {
	repo           ports.OrderRepository
	idemStore      ports.IdempotencyStore
	placeOrder     commands.PlaceOrderHandler
	cancelOrder    commands.CancelOrderHandler
	updateStatus   *commands.UpdateStatusCommandHandler
	confirmPayment *commands.ConfirmPaymentCommandHandler
	getOrder       *queries.GetOrderQueryHandler
	listOrders     *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	catalog ports.CatalogStore,
	cart ports.CartStore,
	compensations ports.CompensationLog,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	place := commands.NewPlaceOrderCommandHandler(repo, catalog, cart, compensations, events)
	cancel := commands.NewCancelOrderCommandHandler(repo, catalog, compensations, events)

	return &Service{
		repo:           repo,
		idemStore:      idem,
		placeOrder:     commands.NewObservablePlaceOrderHandler(place, logger, metrics),
		cancelOrder:    commands.NewObservableCancelOrderHandler(cancel, logger, metrics),
		updateStatus:   commands.NewUpdateStatusCommandHandler(repo, events),
		confirmPayment: commands.NewConfirmPaymentCommandHandler(repo),
		getOrder:       queries.NewGetOrderQueryHandler(repo),
		listOrders:     queries.NewListOrdersQueryHandler(repo),
	}
}

// PlaceOrderInput captures the checkout payload.
type PlaceOrderInput struct {
	CustomerID      string               `json:"customer_id"`
	Shipping        domain.ShippingInfo  `json:"shipping"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	BankTransferRef string               `json:"bank_transfer_ref,omitempty"`
	TotalPrice      int64                `json:"total_price_cents"`
}

// PlaceOrder runs the reservation algorithm at most once per idempotency key.
// A retried submission with a known key is answered with the original order;
// stock is not touched again.
func (s *Service) PlaceOrder(ctx context.Context, idempotencyKey string, input PlaceOrderInput) (*domain.Order, error) {
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key is required")
	}

	if record, err := s.idemStore.Get(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if record != nil {
		return s.repo.GetByID(ctx, record.OrderID)
	}

	order, err := s.placeOrder.Handle(ctx, commands.PlaceOrderCommand{
		CustomerID:      input.CustomerID,
		Shipping:        input.Shipping,
		PaymentMethod:   input.PaymentMethod,
		BankTransferRef: input.BankTransferRef,
		DeclaredTotal:   input.TotalPrice,
	})
	if order != nil {
		// The order exists even when a post-persist step failed; remember the
		// key so a retry does not decrement stock twice.
		if saveErr := s.idemStore.Save(ctx, idempotencyKey, ports.PlacementRecord{OrderID: order.ID}); saveErr != nil && err == nil {
			err = saveErr
		}
	}
	return order, err
}

// CancelOrder cancels a Processing order on behalf of its owner or an admin,
// returning the per-item stock restoration report.
func (s *Service) CancelOrder(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*domain.Order, []domain.ItemRestoration, error) {
	return s.cancelOrder.Handle(ctx, commands.CancelOrderCommand{
		OrderID:          orderID,
		RequesterID:      requesterID,
		RequesterIsAdmin: requesterIsAdmin,
	})
}

// UpdateStatus moves an order along the lifecycle state machine.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatus.Handle(ctx, commands.UpdateStatusCommand{
		OrderID:   orderID,
		NewStatus: status,
	})
}

// ConfirmPayment flips the payment flag on an order.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string, isPaid bool) (*domain.Order, error) {
	return s.confirmPayment.Handle(ctx, commands.ConfirmPaymentCommand{
		OrderID: orderID,
		IsPaid:  isPaid,
	})
}

// GetOrder retrieves an order visible to the requester.
func (s *Service) GetOrder(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*domain.Order, error) {
	return s.getOrder.Handle(ctx, queries.GetOrderQuery{
		OrderID:          orderID,
		RequesterID:      requesterID,
		RequesterIsAdmin: requesterIsAdmin,
	})
}

// ListOrders returns orders using a filter, scoped to the requester unless
// they are an administrator.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter, requesterID string, requesterIsAdmin bool) ([]domain.Order, error) {
	return s.listOrders.Handle(ctx, queries.ListOrdersQuery{
		Filter:           filter,
		RequesterID:      requesterID,
		RequesterIsAdmin: requesterIsAdmin,
	})
}
