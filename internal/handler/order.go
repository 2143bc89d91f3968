package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/toyhub/storefront/internal/domain/checkout"
	"github.com/toyhub/storefront/internal/domain/order"
	"github.com/toyhub/storefront/internal/domain/product"
)

// composeOrderRequest is the POST /orders payload.
type composeOrderRequest struct {
	OrderItems       []order.LineItem `json:"orderItems"`
	ShippingAddress1 string           `json:"shippingAddress1"`
	ShippingAddress2 string           `json:"shippingAddress2"`
	City             string           `json:"city"`
	Zip              string           `json:"zip"`
	Country          string           `json:"country"`
	Phone            string           `json:"phone"`
	Status           string           `json:"status"`
	User             string           `json:"user"`
}

// updateStatusRequest is the PUT /orders/{id} payload.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// ComposeOrder handles POST /api/v1/orders.
func (h *Handler) ComposeOrder(w http.ResponseWriter, r *http.Request) {
	var req composeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User == "" {
		writeError(w, r, http.StatusBadRequest, "user is required")
		return
	}

	o, err := h.orders.Compose(r.Context(), order.ComposeRequest{
		Items: req.OrderItems,
		Shipping: order.ShippingInfo{
			Address1: req.ShippingAddress1,
			Address2: req.ShippingAddress2,
			City:     req.City,
			Zip:      req.Zip,
			Country:  req.Country,
			Phone:    req.Phone,
		},
		UserID: req.User,
		Status: req.Status,
	})
	if err != nil {
		h.writeOrderError(w, r, err, "the order cannot be created")
		return
	}

	writeJSON(w, r, http.StatusCreated, toOrderDTO(o))
}

// ListOrders handles GET /api/v1/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.writeOrderError(w, r, err, "orders cannot be listed")
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderListDTO(orders))
}

// GetOrder handles GET /api/v1/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeOrderError(w, r, err, "the order cannot be fetched")
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderDTO(o))
}

// UserOrders handles GET /api/v1/orders/get/userorders/{userID}.
func (h *Handler) UserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeOrderError(w, r, err, "user orders cannot be listed")
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderListDTO(orders))
}

// UpdateOrderStatus handles PUT /api/v1/orders/{id}. Status is the only
// mutable field; the full post-update entity is returned.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, r, http.StatusBadRequest, "status is required")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeOrderError(w, r, err, "the order cannot be updated")
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderDTO(o))
}

// DeleteOrder handles DELETE /api/v1/orders/{id}. The order's items are
// removed together with it.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeOrderError(w, r, err, "the order cannot be deleted")
		return
	}
	writeJSON(w, r, http.StatusOK, statusEnvelope{Success: true, Message: "order deleted successfully"})
}

// CreateCheckoutSession handles POST /api/v1/orders/create-checkout-session.
// The body is a bare JSON array of line items; the response carries only the
// opaque session handle.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var items []order.LineItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.checkout.BuildSession(r.Context(), items)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"id":  session.ID,
		"url": session.URL,
	})
}

// TotalSales handles GET /api/v1/orders/get/totalsales.
func (h *Handler) TotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.orders.TotalSales(r.Context())
	if err != nil {
		h.writeOrderError(w, r, err, "total sales cannot be computed")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]float64{
		"totalsales": total.InexactFloat64(),
	})
}

// OrderCount handles GET /api/v1/orders/get/count.
func (h *Handler) OrderCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.orders.Count(r.Context())
	if err != nil {
		h.writeOrderError(w, r, err, "orders cannot be counted")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int64{
		"orderCount": n,
	})
}

// writeOrderError maps domain errors to HTTP statuses: validation 400,
// missing references 404, everything else a generic 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		iqErr  *order.InvalidQuantityError
		pnfErr *order.ProductNotFoundError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, r, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pnfErr):
		writeError(w, r, http.StatusNotFound, pnfErr.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "order not found")
	default:
		zctx.From(r.Context()).Error("order operation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, fallback)
	}
}

// writeCheckoutError distinguishes input, lookup, and gateway failures.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *checkout.GatewayError
	switch {
	case errors.Is(err, checkout.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "invalid product in line items")
	case errors.As(err, &gwErr):
		zctx.From(r.Context()).Error("checkout session failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "the checkout session cannot be created")
	default:
		zctx.From(r.Context()).Error("checkout session failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "the checkout session cannot be created")
	}
}
