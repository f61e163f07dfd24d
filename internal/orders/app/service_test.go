package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	idemmemory "github.com/dejobratic/bookstore/internal/idempotency/memory"
	"github.com/dejobratic/bookstore/internal/kafka"
	"github.com/dejobratic/bookstore/internal/orders/adapters/memory"
	"github.com/dejobratic/bookstore/internal/orders/app"
	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/metrics"
	"github.com/dejobratic/bookstore/internal/orders/ports"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type fixture struct {
	service *app.Service
	repo    *memory.Repository
	catalog *memory.Catalog
	cart    *memory.CartStore
}

func newFixture(t *testing.T, products ...domain.Product) *fixture {
	t.Helper()

	repo := memory.NewRepository()
	catalog := memory.NewCatalog(products...)
	cart := memory.NewCartStore()
	compensations := memory.NewCompensationLog()
	idem := idemmemory.NewStore()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := metrics.NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewService(repo, catalog, cart, compensations, kafka.NewNoopEventBus(), idem, logger, m)

	return &fixture{service: service, repo: repo, catalog: catalog, cart: cart}
}

func checkoutInput() app.PlaceOrderInput {
	return app.PlaceOrderInput{
		CustomerID:    "customer-1",
		Shipping:      domain.ShippingInfo{Address: "1 Main St", City: "Springfield", Phone: "555-0100"},
		PaymentMethod: domain.PaymentCOD,
		TotalPrice:    7998,
	}
}

func seedCart(f *fixture) {
	f.cart.SetCart("customer-1", []domain.CartLine{
		{ProductID: "book-1", Name: "The Go Programming Language", Quantity: 2, UnitPrice: 3999},
	})
}

func TestServicePlaceOrder(t *testing.T) {
	t.Run("places order and decrements stock", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)

		order, err := f.service.PlaceOrder(context.Background(), "key-1", checkoutInput())

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order.Status != domain.StatusProcessing {
			t.Errorf("expected status %s, got %s", domain.StatusProcessing, order.Status)
		}

		if f.catalog.StockLevel("book-1") != 3 {
			t.Errorf("expected stock 3 after placement, got %d", f.catalog.StockLevel("book-1"))
		}

		stored, err := f.repo.GetByID(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("expected order to be persisted: %v", err)
		}
		if stored.CustomerID != "customer-1" {
			t.Errorf("unexpected stored order: %+v", stored)
		}
	})

	t.Run("requires an idempotency key", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)

		_, err := f.service.PlaceOrder(context.Background(), "", checkoutInput())

		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("retry with the same key replays the original order", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		first, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("first placement failed: %v", err)
		}

		// A network retry resubmits the identical request; the cart is already
		// empty but that must not matter.
		second, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("retried placement failed: %v", err)
		}

		if second.ID != first.ID {
			t.Errorf("expected same order, got %s and %s", first.ID, second.ID)
		}

		if f.catalog.StockLevel("book-1") != 3 {
			t.Errorf("retry must not decrement stock again, got %d", f.catalog.StockLevel("book-1"))
		}

		orders, err := f.repo.List(ctx, ports.ListFilter{CustomerID: "customer-1"})
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 1 {
			t.Errorf("expected exactly one order, got %d", len(orders))
		}
	})

	t.Run("a fresh key places a second order", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		ctx := context.Background()

		seedCart(f)
		if _, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput()); err != nil {
			t.Fatalf("first placement failed: %v", err)
		}

		seedCart(f)
		if _, err := f.service.PlaceOrder(ctx, "key-2", checkoutInput()); err != nil {
			t.Fatalf("second placement failed: %v", err)
		}

		if f.catalog.StockLevel("book-1") != 1 {
			t.Errorf("expected stock 1 after two placements, got %d", f.catalog.StockLevel("book-1"))
		}
	})

	t.Run("out of stock placement leaves no trace", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 1})
		seedCart(f)
		ctx := context.Background()

		_, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())

		var oos *domain.OutOfStockError
		if !errors.As(err, &oos) {
			t.Fatalf("expected OutOfStockError, got: %v", err)
		}

		if oos.Available != 1 || oos.Requested != 2 {
			t.Errorf("unexpected error detail: %+v", oos)
		}

		if f.catalog.StockLevel("book-1") != 1 {
			t.Errorf("failed placement must not change stock, got %d", f.catalog.StockLevel("book-1"))
		}

		orders, _ := f.repo.List(ctx, ports.ListFilter{CustomerID: "customer-1"})
		if len(orders) != 0 {
			t.Errorf("failed placement must not persist an order, got %d", len(orders))
		}

		// The key was not consumed; restocking lets the same key succeed.
		if _, err := f.catalog.AdjustStock(ctx, "book-1", 5); err != nil {
			t.Fatalf("restock: %v", err)
		}
		if _, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput()); err != nil {
			t.Fatalf("expected placement to succeed after restock, got: %v", err)
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})

		_, err := f.service.PlaceOrder(context.Background(), "key-1", checkoutInput())

		if !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got: %v", err)
		}
	})
}

func TestServiceCancelOrder(t *testing.T) {
	t.Run("cancel restores stock and reports per item", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		cancelled, report, err := f.service.CancelOrder(ctx, order.ID, "customer-1", false)
		if err != nil {
			t.Fatalf("cancellation failed: %v", err)
		}

		if cancelled.Status != domain.StatusCancelled {
			t.Errorf("expected status %s, got %s", domain.StatusCancelled, cancelled.Status)
		}

		if len(report) != 1 || report[0].Outcome != domain.RestorationRestored {
			t.Errorf("unexpected restoration report: %+v", report)
		}

		if f.catalog.StockLevel("book-1") != 5 {
			t.Errorf("expected stock restored to 5, got %d", f.catalog.StockLevel("book-1"))
		}
	})

	t.Run("double cancel is rejected", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		if _, _, err := f.service.CancelOrder(ctx, order.ID, "customer-1", false); err != nil {
			t.Fatalf("first cancellation failed: %v", err)
		}

		_, _, err = f.service.CancelOrder(ctx, order.ID, "customer-1", false)

		var invalid *domain.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got: %v", err)
		}

		// The second cancel must not restore stock again.
		if f.catalog.StockLevel("book-1") != 5 {
			t.Errorf("expected stock to stay at 5, got %d", f.catalog.StockLevel("book-1"))
		}
	})

	t.Run("cancel reports a vanished product", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		f.catalog.RemoveProduct("book-1")

		cancelled, report, err := f.service.CancelOrder(ctx, order.ID, "customer-1", false)
		if err != nil {
			t.Fatalf("cancellation failed: %v", err)
		}

		if cancelled.Status != domain.StatusCancelled {
			t.Errorf("expected status %s, got %s", domain.StatusCancelled, cancelled.Status)
		}

		if len(report) != 1 || report[0].Outcome != domain.RestorationNotFound {
			t.Errorf("unexpected restoration report: %+v", report)
		}
	})
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("full lifecycle to delivered", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		for _, status := range []domain.OrderStatus{
			domain.StatusConfirmed,
			domain.StatusShipping,
			domain.StatusDelivered,
		} {
			order, err = f.service.UpdateStatus(ctx, order.ID, status)
			if err != nil {
				t.Fatalf("transition to %s failed: %v", status, err)
			}
		}

		if !order.IsDelivered || order.DeliveredAt == nil {
			t.Error("expected delivery stamp on delivered order")
		}

		stored, _ := f.service.GetOrder(ctx, order.ID, "customer-1", false)
		if stored.Status != domain.StatusDelivered {
			t.Errorf("expected stored status %s, got %s", domain.StatusDelivered, stored.Status)
		}
	})

	t.Run("confirm payment persists the flag", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		updated, err := f.service.ConfirmPayment(ctx, order.ID, true)
		if err != nil {
			t.Fatalf("payment confirmation failed: %v", err)
		}

		if !updated.IsPaid || updated.PaidAt == nil {
			t.Error("expected order to be marked paid")
		}

		stored, _ := f.repo.GetByID(ctx, order.ID)
		if !stored.IsPaid {
			t.Error("expected payment flag to be persisted")
		}
	})

	t.Run("get order enforces ownership", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 5})
		seedCart(f)
		ctx := context.Background()

		order, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput())
		if err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		if _, err := f.service.GetOrder(ctx, order.ID, "customer-2", false); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got: %v", err)
		}

		if _, err := f.service.GetOrder(ctx, order.ID, "admin-9", true); err != nil {
			t.Fatalf("admin read failed: %v", err)
		}
	})

	t.Run("list orders scopes non-admin to own orders", func(t *testing.T) {
		f := newFixture(t, domain.Product{ID: "book-1", Stock: 10})
		ctx := context.Background()

		seedCart(f)
		if _, err := f.service.PlaceOrder(ctx, "key-1", checkoutInput()); err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		f.cart.SetCart("customer-2", []domain.CartLine{
			{ProductID: "book-1", Name: "The Go Programming Language", Quantity: 1, UnitPrice: 3999},
		})
		input := checkoutInput()
		input.CustomerID = "customer-2"
		if _, err := f.service.PlaceOrder(ctx, "key-2", input); err != nil {
			t.Fatalf("placement failed: %v", err)
		}

		own, err := f.service.ListOrders(ctx, ports.ListFilter{}, "customer-1", false)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(own) != 1 || own[0].CustomerID != "customer-1" {
			t.Errorf("expected only customer-1 orders, got %+v", own)
		}

		all, err := f.service.ListOrders(ctx, ports.ListFilter{}, "admin-9", true)
		if err != nil {
			t.Fatalf("admin list failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 orders for admin, got %d", len(all))
		}
	})
}
