// Package handler exposes the order and checkout operations over HTTP.
// Routes and payload shapes form the boundary contract; business logic
// lives in the domain services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toyhub/storefront/internal/domain/checkout"
	"github.com/toyhub/storefront/internal/domain/order"
)

// Handler wires the domain services to the HTTP surface.
type Handler struct {
	orders   *order.Service
	checkout *checkout.Service
}

// New constructs a Handler with the required domain services.
func New(orders *order.Service, checkoutSvc *checkout.Service) *Handler {
	return &Handler{
		orders:   orders,
		checkout: checkoutSvc,
	}
}

// Routes returns the API router mounted under /api/v1.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.ComposeOrder)
		r.Post("/create-checkout-session", h.CreateCheckoutSession)
		r.Get("/get/totalsales", h.TotalSales)
		r.Get("/get/count", h.OrderCount)
		r.Get("/get/userorders/{userID}", h.UserOrders)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}", h.UpdateOrderStatus)
		r.Delete("/{id}", h.DeleteOrder)
	})
	return r
}
