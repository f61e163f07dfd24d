package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/app/commands"
	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

func TestUpdateStatus(t *testing.T) {
	t.Run("moves processing order to confirmed", func(t *testing.T) {
		var persisted ports.StatusUpdate
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return processingOrder(), nil
			},
			updateStatusFn: func(ctx context.Context, id string, update ports.StatusUpdate) error {
				persisted = update
				return nil
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: domain.StatusConfirmed,
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order.Status != domain.StatusConfirmed {
			t.Errorf("expected status %s, got %s", domain.StatusConfirmed, order.Status)
		}

		if persisted.Status != domain.StatusConfirmed {
			t.Errorf("expected persisted status %s, got %s", domain.StatusConfirmed, persisted.Status)
		}

		if persisted.Delivered {
			t.Error("confirmed must not carry a delivery stamp")
		}
	})

	t.Run("delivered transition stamps delivery fields", func(t *testing.T) {
		var persisted ports.StatusUpdate
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				order := processingOrder()
				order.Status = domain.StatusShipping
				return order, nil
			},
			updateStatusFn: func(ctx context.Context, id string, update ports.StatusUpdate) error {
				persisted = update
				return nil
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, &mockEventBus{})

		before := time.Now().UTC()
		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: domain.StatusDelivered,
		})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if !order.IsDelivered {
			t.Error("expected order to be marked delivered")
		}

		if order.DeliveredAt == nil || order.DeliveredAt.Before(before) {
			t.Errorf("expected delivery timestamp at or after %v, got %v", before, order.DeliveredAt)
		}

		if !persisted.Delivered || persisted.DeliveredAt == nil {
			t.Errorf("expected persisted delivery stamp, got %+v", persisted)
		}
	})

	t.Run("rejects transition outside the table", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				order := processingOrder()
				order.Status = domain.StatusDelivered
				return order, nil
			},
			updateStatusFn: func(ctx context.Context, id string, update ports.StatusUpdate) error {
				t.Error("rejected transition must not be persisted")
				return nil
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: domain.StatusShipping,
		})

		var invalid *domain.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got: %v", err)
		}

		if invalid.From != domain.StatusDelivered || invalid.To != domain.StatusShipping {
			t.Errorf("unexpected transition detail: %+v", invalid)
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
	})

	t.Run("rejects cancellation through the status update", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				t.Error("order must not be loaded for a rejected command")
				return nil, ports.ErrNotFound
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: domain.StatusCancelled,
		})

		if !errors.Is(err, commands.ErrCancelViaUpdate) {
			t.Fatalf("expected ErrCancelViaUpdate, got: %v", err)
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		handler := commands.NewUpdateStatusCommandHandler(&mockRepository{}, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: "archived",
		})

		if err == nil {
			t.Fatal("expected error, got nil")
		}

		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
	})

	t.Run("returns not found for unknown order", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return nil, ports.ErrNotFound
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "missing",
			NewStatus: domain.StatusConfirmed,
		})

		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("returns order even when event publishing fails", func(t *testing.T) {
		eventErr := errors.New("kafka unavailable")
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
				return processingOrder(), nil
			},
		}
		events := &mockEventBus{
			publishOrderStatusChangedFn: func(ctx context.Context, orderID string, status domain.OrderStatus) error {
				return eventErr
			},
		}
		handler := commands.NewUpdateStatusCommandHandler(repo, events)

		order, err := handler.Handle(context.Background(), commands.UpdateStatusCommand{
			OrderID:   "order-1",
			NewStatus: domain.StatusConfirmed,
		})

		if !errors.Is(err, eventErr) {
			t.Fatalf("expected error to wrap event error, got: %v", err)
		}

		if order == nil {
			t.Fatal("expected order to be returned even on event bus error")
		}
	})
}
