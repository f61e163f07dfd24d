package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checkout finds no cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrUnauthorized is returned when the requester is neither the order's
	// owner nor an administrator.
	ErrUnauthorized = errors.New("not authorized for this order")
)

// ProductNotFoundError indicates a referenced product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// OutOfStockError indicates a conditional decrement was rejected. Available
// is the stock level observed at rejection time and is surfaced verbatim so
// the caller can show the exact remaining quantity.
type OutOfStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s has only %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}

// InvalidTransitionError indicates a status change outside the transition table.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

// CompensationFailedError indicates a compensating stock increment could not
// be applied, leaving a stock-count inconsistency that requires manual
// reconciliation. It is fatal and never retried automatically.
type CompensationFailedError struct {
	ProductID string
	Err       error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("failed to compensate stock for product %s: %v", e.ProductID, e.Err)
}

func (e *CompensationFailedError) Unwrap() error {
	return e.Err
}
