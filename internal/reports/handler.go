package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenderdesk/tenderdesk/internal/platform/httpx"
)

// Handler exposes the reports endpoints. Every authenticated role holds the
// reports area, so the dashboard needs no further gating.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	build := h.service.Summary
	if r.URL.Query().Get("refresh") == "1" {
		build = h.service.RefreshSummary
	}
	summary, err := build(r.Context())
	if err != nil {
		h.logger.Error("build summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
