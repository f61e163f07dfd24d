package queries

import (
	"context"
	"errors"

	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// ListOrdersQuery returns orders matching the filter. Non-admin requesters
// may only list their own orders.
type ListOrdersQuery struct {
	Filter           ports.ListFilter
	RequesterID      string
	RequesterIsAdmin bool
}

type ListOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListOrdersQueryHandler(repo ports.OrderRepository) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{repo: repo}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := query.Filter
	if !query.RequesterIsAdmin {
		filter.CustomerID = query.RequesterID
	}

	return h.repo.List(ctx, filter)
}

func (q ListOrdersQuery) Validate() error {
	if !q.RequesterIsAdmin && q.RequesterID == "" {
		return errors.New("requester_id is required")
	}
	if q.Filter.Status != nil && !domain.IsValidStatus(*q.Filter.Status) {
		return errors.New("status is not a known order status")
	}
	return nil
}
