package tenders

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

// Handler exposes tender endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tender routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{tenderID}", h.handleGet)
	r.Put("/{tenderID}", h.handleUpdate)
	r.Delete("/{tenderID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:     q.Get("status"),
		TenderType: q.Get("tender_type"),
		Search:     q.Get("search"),
	}
	if raw := q.Get("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "assigned_to must be an integer")
			return
		}
		filter.AssignedTo = id
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list tenders", err)
		return
	}
	if list == nil {
		list = []Tender{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tenders":  list,
		"statuses": Statuses(),
		"types":    Types(),
	})
}

type createTenderRequest struct {
	ReferenceCode      *string  `json:"reference_code"`
	TitleEN            string   `json:"title_en" validate:"required"`
	TitleAR            *string  `json:"title_ar"`
	TenderType         string   `json:"tender_type" validate:"required"`
	Donor              *string  `json:"donor"`
	DescriptionEN      *string  `json:"description_en"`
	DescriptionAR      *string  `json:"description_ar"`
	Status             string   `json:"status"`
	EstimatedValue     *float64 `json:"estimated_value"`
	Currency           *string  `json:"currency"`
	SubmissionDeadline *string  `json:"submission_deadline"`
	IssueDate          *string  `json:"issue_date"`
	AssignedTo         *int64   `json:"assigned_to"`
	SupplierID         *int64   `json:"supplier_id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	var req createTenderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id, err := h.service.Create(r.Context(), actor, Tender{
		ReferenceCode:      req.ReferenceCode,
		TitleEN:            req.TitleEN,
		TitleAR:            req.TitleAR,
		TenderType:         Type(req.TenderType),
		Donor:              req.Donor,
		DescriptionEN:      req.DescriptionEN,
		DescriptionAR:      req.DescriptionAR,
		Status:             Status(req.Status),
		EstimatedValue:     req.EstimatedValue,
		Currency:           req.Currency,
		SubmissionDeadline: req.SubmissionDeadline,
		IssueDate:          req.IssueDate,
		AssignedTo:         req.AssignedTo,
		SupplierID:         req.SupplierID,
	})
	if err != nil {
		h.respondError(w, "create tender", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := paramID(r, "tenderID")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	tender, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get tender", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tender": tender})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := paramID(r, "tenderID")
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
		h.respondError(w, "update tender", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := paramID(r, "tenderID")
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.respondError(w, "delete tender", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func paramID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
