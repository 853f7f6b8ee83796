package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/platform/httpx"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Handler exposes invoice endpoints. Listing and creation are nested under
// projects; updates address the invoice directly.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountProjectRoutes registers the project-scoped invoice routes.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.Get("/{projectID}/invoices", h.handleList)
	r.Post("/{projectID}/invoices", h.handleCreate)
}

// MountRoutes registers the invoice-scoped routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/{invoiceID}", h.handleUpdate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	list, err := h.service.ListByProject(r.Context(), actor, projectID)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	if list == nil {
		list = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": list})
}

type createInvoiceRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency *string `json:"currency"`
	DueDate  *string `json:"due_date"`
	PaidDate *string `json:"paid_date"`
	Status   string  `json:"status"`
	Notes    *string `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id, err := h.service.Create(r.Context(), actor, Invoice{
		ProjectID: projectID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		DueDate:   req.DueDate,
		PaidDate:  req.PaidDate,
		Status:    Status(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var changes map[string]any
	if err := httpx.DecodeJSON(r, &changes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), actor, id, changes); err != nil {
		h.respondError(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrInvalidInput) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrPermissionDenied) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
