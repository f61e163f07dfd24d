package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusShipping   OrderStatus = "shipping"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// validTransitions is the closed transition table. Delivered is reachable from
// every non-terminal state so an administrator can close an order directly.
// Cancelled is reachable from Processing only; once fulfilment has started
// there is no safe amount of stock to restore.
var validTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusProcessing: {StatusConfirmed: true, StatusDelivered: true, StatusCancelled: true},
	StatusConfirmed:  {StatusShipping: true, StatusDelivered: true},
	StatusShipping:   {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to OrderStatus) bool {
	return validTransitions[from][to]
}

// IsValidStatus reports whether the value is one of the known statuses.
func IsValidStatus(s OrderStatus) bool {
	switch s {
	case StatusProcessing, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentMethod identifies how the customer chose to pay.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "COD"
	PaymentBank PaymentMethod = "BANK"
)

// ShippingInfo is the delivery destination recorded on the order.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// OrderLineItem is a snapshot of one cart line at placement time. It is never
// re-derived from current product state; cancellation restores stock from
// these recorded quantities.
type OrderLineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price_cents"`
	Image     string `json:"image"`
}

// Order represents a placed order managed by the system.
type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	LineItems       []OrderLineItem `json:"line_items"`
	Shipping        ShippingInfo    `json:"shipping"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	BankTransferRef string          `json:"bank_transfer_ref,omitempty"`
	TotalPrice      int64           `json:"total_price_cents"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Status          OrderStatus     `json:"status"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.CustomerID) == "" {
		return errors.New("customer_id is required")
	}
	if len(o.LineItems) == 0 {
		return errors.New("order must contain at least one line item")
	}
	for _, item := range o.LineItems {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("line item product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("line item quantity must be positive")
		}
	}
	if o.PaymentMethod != PaymentCOD && o.PaymentMethod != PaymentBank {
		return errors.New("payment_method must be COD or BANK")
	}
	if o.TotalPrice < 0 {
		return errors.New("total_price_cents must not be negative")
	}
	if !IsValidStatus(o.Status) {
		return errors.New("status is not a known order status")
	}
	return nil
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
