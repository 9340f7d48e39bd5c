package invoice

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers invoice routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Get("/invoices/outstanding", h.outstanding)
	r.Get("/invoices/aging", h.aging)
	r.Get("/invoices/{id}", h.show)
	r.Post("/invoices/{id}/payments", h.registerPayment)
}
