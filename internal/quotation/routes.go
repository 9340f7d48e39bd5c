package quotation

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers quotation routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotations", h.list)
	r.Post("/quotations", h.create)
	r.Get("/quotations/receipt-preview", h.receiptPreview)
	r.Get("/quotations/{id}", h.show)
	r.Patch("/quotations/{id}", h.update)
	r.Post("/quotations/{id}/approve", h.approve)
	r.Post("/quotations/{id}/reject", h.reject)
	r.Post("/quotations/{id}/convert", h.convert)
	r.Delete("/quotations/{id}", h.remove)
}
