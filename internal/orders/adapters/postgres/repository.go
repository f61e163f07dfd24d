package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO orders (
			id, customer_id, shipping_address, shipping_city, shipping_phone,
			payment_method, bank_transfer_ref, total_price_cents,
			is_paid, paid_at, status, is_delivered, delivered_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.Shipping.Address,
		order.Shipping.City,
		order.Shipping.Phone,
		order.PaymentMethod,
		order.BankTransferRef,
		order.TotalPrice,
		order.IsPaid,
		order.PaidAt,
		order.Status,
		order.IsDelivered,
		order.DeliveredAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_line_items (order_id, position, product_id, name, quantity, unit_price_cents, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, item := range order.LineItems {
		if _, err := tx.Exec(ctx, itemQuery,
			order.ID, i, item.ProductID, item.Name, item.Quantity, item.UnitPrice, item.Image,
		); err != nil {
			return fmt.Errorf("insert order line item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, shipping_address, shipping_city, shipping_phone,
		       payment_method, bank_transfer_ref, total_price_cents,
		       is_paid, paid_at, status, is_delivered, delivered_at,
		       created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Shipping.Address,
		&order.Shipping.City,
		&order.Shipping.Phone,
		&order.PaymentMethod,
		&order.BankTransferRef,
		&order.TotalPrice,
		&order.IsPaid,
		&order.PaidAt,
		&order.Status,
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.lineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.LineItems = items

	return &order, nil
}

func (r *Repository) lineItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	query := `
		SELECT product_id, name, quantity, unit_price_cents, image
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order line items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderLineItem
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Image); err != nil {
			return nil, fmt.Errorf("scan order line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order line items: %w", err)
	}

	return items, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT id, customer_id, shipping_address, shipping_city, shipping_phone,
		       payment_method, bank_transfer_ref, total_price_cents,
		       is_paid, paid_at, status, is_delivered, delivered_at,
		       created_at, updated_at
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR customer_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	var customerFilter *string
	if filter.CustomerID != "" {
		customerFilter = &filter.CustomerID
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, customerFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Shipping.Address,
			&order.Shipping.City,
			&order.Shipping.Phone,
			&order.PaymentMethod,
			&order.BankTransferRef,
			&order.TotalPrice,
			&order.IsPaid,
			&order.PaidAt,
			&order.Status,
			&order.IsDelivered,
			&order.DeliveredAt,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.lineItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].LineItems = items
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, update ports.StatusUpdate) error {
	query := `
		UPDATE orders
		SET status = $1,
		    is_delivered = CASE WHEN $2 THEN TRUE ELSE is_delivered END,
		    delivered_at = CASE WHEN $2 THEN $3 ELSE delivered_at END,
		    updated_at = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query, update.Status, update.Delivered, update.DeliveredAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) UpdatePayment(ctx context.Context, id string, isPaid bool, paidAt *time.Time) error {
	query := `
		UPDATE orders
		SET is_paid = $1, paid_at = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, isPaid, paidAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}
