package customers

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers customer routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.create)
	r.Get("/customers/{id}", h.show)
	r.Patch("/customers/{id}", h.update)
}
