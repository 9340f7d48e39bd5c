package delivery

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers delivery run routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/delivery-runs", h.list)
	r.Post("/delivery-runs", h.create)
	r.Get("/delivery-runs/{id}", h.show)
	r.Post("/delivery-runs/{id}/bookings", h.assign)
	r.Delete("/delivery-runs/{id}/bookings/{bookingID}", h.release)
	r.Post("/delivery-runs/{id}/dispatch", h.dispatch)
	r.Post("/delivery-runs/{id}/complete", h.complete)
	r.Post("/delivery-runs/{id}/cancel", h.cancel)
}
