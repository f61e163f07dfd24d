package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dejobratic/bookstore/internal/orders/app"
	"github.com/dejobratic/bookstore/internal/orders/app/commands"
	"github.com/dejobratic/bookstore/internal/orders/domain"
	"github.com/dejobratic/bookstore/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations. Authentication is an
// upstream concern: the gateway injects the requester identity via the
// X-Customer-ID and X-Admin headers.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByID)
}

type requester struct {
	ID      string
	IsAdmin bool
}

func requesterFrom(r *http.Request) requester {
	return requester{
		ID:      strings.TrimSpace(r.Header.Get("X-Customer-ID")),
		IsAdmin: r.Header.Get("X-Admin") == "true",
	}
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	id, action, _ := strings.Cut(trimmed, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.getOrder(w, r, id)
	case "cancel":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.cancelOrder(w, r, id)
	case "status":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.updateStatus(w, r, id)
	case "payment":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.confirmPayment(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	var payload app.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	req := requesterFrom(r)
	if payload.CustomerID == "" {
		payload.CustomerID = req.ID
	}
	if !req.IsAdmin && req.ID != "" && payload.CustomerID != req.ID {
		writeError(w, http.StatusForbidden, "cannot place an order for another customer")
		return
	}

	order, err := h.service.PlaceOrder(ctx, idemKey, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	req := requesterFrom(r)
	order, err := h.service.GetOrder(r.Context(), id, req.ID, req.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}
	if customerParam := r.URL.Query().Get("customer_id"); customerParam != "" {
		filter.CustomerID = customerParam
	}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	req := requesterFrom(r)
	orders, err := h.service.ListOrders(r.Context(), filter, req.ID, req.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, id string) {
	req := requesterFrom(r)
	order, restorations, err := h.service.CancelOrder(r.Context(), id, req.ID, req.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order":        order,
		"restorations": restorations,
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		IsPaid bool `json:"is_paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.ConfirmPayment(r.Context(), id, payload.IsPaid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// writeServiceError maps domain errors onto HTTP statuses with enough detail
// for the caller to render a precise message.
func writeServiceError(w http.ResponseWriter, err error) {
	var outOfStock *domain.OutOfStockError
	var notFound *domain.ProductNotFoundError
	var invalidTransition *domain.InvalidTransitionError
	var compFailed *domain.CompensationFailedError

	switch {
	case errors.As(err, &outOfStock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      outOfStock.Error(),
			"product_id": outOfStock.ProductID,
			"available":  outOfStock.Available,
			"requested":  outOfStock.Requested,
		})
	case errors.As(err, &invalidTransition):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": invalidTransition.Error(),
			"from":  invalidTransition.From,
			"to":    invalidTransition.To,
		})
	case errors.As(err, &compFailed):
		// The stock inconsistency is recorded server-side; the caller only
		// sees a generic failure.
		writeError(w, http.StatusInternalServerError, "order processing failed")
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, commands.ErrCancelViaUpdate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
