package booking

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers booking routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bookings", h.list)
	r.Post("/bookings", h.create)
	r.Get("/bookings/receipt-preview", h.receiptPreview)
	r.Get("/bookings/{id}", h.show)
	r.Patch("/bookings/{id}", h.update)
	r.Post("/bookings/{id}/approve", h.approve)
	r.Post("/bookings/{id}/reject", h.reject)
	r.Post("/bookings/{id}/cancel", h.cancel)
	r.Delete("/bookings/{id}", h.remove)
}
