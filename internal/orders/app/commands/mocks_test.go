package commands_test

import (
	"context"
	"sync"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

type mockRepository struct {
	createFn        func(ctx context.Context, order domain.Order) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Order, error)
	updateStatusFn  func(ctx context.Context, id string, update ports.StatusUpdate) error
	updatePaymentFn func(ctx context.Context, id string, isPaid bool, paidAt *time.Time) error
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, update ports.StatusUpdate) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, update)
	}
	return nil
}

func (m *mockRepository) UpdatePayment(ctx context.Context, id string, isPaid bool, paidAt *time.Time) error {
	if m.updatePaymentFn != nil {
		return m.updatePaymentFn(ctx, id, isPaid, paidAt)
	}
	return nil
}

type stockCall struct {
	ProductID string
	Delta     int
}

type mockCatalog struct {
	mu            sync.Mutex
	adjustStockFn func(ctx context.Context, id string, delta int) (int, error)
	calls         []stockCall
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return nil, &domain.ProductNotFoundError{ProductID: id}
}

func (m *mockCatalog) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, stockCall{ProductID: id, Delta: delta})
	m.mu.Unlock()

	if m.adjustStockFn != nil {
		return m.adjustStockFn(ctx, id, delta)
	}
	return 0, nil
}

func (m *mockCatalog) Calls() []stockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stockCall(nil), m.calls...)
}

type mockCartStore struct {
	readCartFn  func(ctx context.Context, customerID string) ([]domain.CartLine, error)
	clearCartFn func(ctx context.Context, customerID string) error
	cleared     bool
}

func (m *mockCartStore) ReadCart(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	if m.readCartFn != nil {
		return m.readCartFn(ctx, customerID)
	}
	return nil, nil
}

func (m *mockCartStore) ClearCart(ctx context.Context, customerID string) error {
	m.cleared = true
	if m.clearCartFn != nil {
		return m.clearCartFn(ctx, customerID)
	}
	return nil
}

type mockCompensationLog struct {
	recordFn func(ctx context.Context, entry ports.CompensationEntry) error
	entries  []ports.CompensationEntry
}

func (m *mockCompensationLog) Record(ctx context.Context, entry ports.CompensationEntry) error {
	m.entries = append(m.entries, entry)
	if m.recordFn != nil {
		return m.recordFn(ctx, entry)
	}
	return nil
}

func (m *mockCompensationLog) ListUnresolved(ctx context.Context) ([]ports.CompensationEntry, error) {
	return m.entries, nil
}

type mockEventBus struct {
	publishOrderPlacedFn        func(ctx context.Context, orderID string) error
	publishOrderStatusChangedFn func(ctx context.Context, orderID string, status domain.OrderStatus) error
	publishOrderCancelledFn     func(ctx context.Context, orderID string) error
}

func (m *mockEventBus) PublishOrderPlaced(ctx context.Context, orderID string) error {
	if m.publishOrderPlacedFn != nil {
		return m.publishOrderPlacedFn(ctx, orderID)
	}
	return nil
}

func (m *mockEventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if m.publishOrderStatusChangedFn != nil {
		return m.publishOrderStatusChangedFn(ctx, orderID, status)
	}
	return nil
}

func (m *mockEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	if m.publishOrderCancelledFn != nil {
		return m.publishOrderCancelledFn(ctx, orderID)
	}
	return nil
}
