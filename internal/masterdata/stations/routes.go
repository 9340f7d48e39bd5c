package stations

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers station routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stations", h.list)
	r.Post("/stations", h.create)
	r.Get("/stations/{id}", h.show)
	r.Patch("/stations/{id}", h.update)
}
