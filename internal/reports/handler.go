package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bps-logistics/backoffice/internal/platform/httpx"
)

// Handler manages report HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/station-summary", h.stationSummary)
}

func (h *Handler) stationSummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summaries, err := h.service.StationDaySummaries(r.Context(), day)
	if err != nil {
		h.logger.Error("station summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"date":     day.Format("2006-01-02"),
		"stations": summaries,
	})
}
