package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/delivery"
	"github.com/bps-logistics/backoffice/internal/invoice"
	"github.com/bps-logistics/backoffice/internal/masterdata/customers"
	"github.com/bps-logistics/backoffice/internal/masterdata/stations"
	"github.com/bps-logistics/backoffice/internal/quotation"
	"github.com/bps-logistics/backoffice/internal/reports"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	BookingHandler   *booking.Handler
	QuotationHandler *quotation.Handler
	DeliveryHandler  *delivery.Handler
	InvoiceHandler   *invoice.Handler
	StationHandler   *stations.Handler
	CustomerHandler  *customers.Handler
	ReportHandler    *reports.Handler
}

// NewRouter constructs the chi.Router with back office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.BookingHandler != nil {
			params.BookingHandler.MountRoutes(r)
		}
		if params.QuotationHandler != nil {
			params.QuotationHandler.MountRoutes(r)
		}
		if params.DeliveryHandler != nil {
			params.DeliveryHandler.MountRoutes(r)
		}
		if params.InvoiceHandler != nil {
			params.InvoiceHandler.MountRoutes(r)
		}
		if params.StationHandler != nil {
			params.StationHandler.MountRoutes(r)
		}
		if params.CustomerHandler != nil {
			params.CustomerHandler.MountRoutes(r)
		}
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
	})

	return r
}
