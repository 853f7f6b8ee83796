package projects

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

// Handler exposes project endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{projectID}", h.handleGet)
	r.Put("/{projectID}", h.handleUpdate)
	r.Post("/{projectID}/suppliers", h.handleAssignSuppliers)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
	}
	if raw := q.Get("manager_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "manager_id must be an integer")
			return
		}
		filter.ManagerID = id
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list projects", err)
		return
	}
	if list == nil {
		list = []Project{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"projects": list,
		"statuses": Statuses(),
	})
}

type createProjectRequest struct {
	TenderID          int64    `json:"tender_id" validate:"required"`
	NameEN            string   `json:"name_en" validate:"required"`
	NameAR            *string  `json:"name_ar"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	Status            string   `json:"status"`
	Currency          *string  `json:"currency"`
	ContractValue     *float64 `json:"contract_value"`
	Cost              *float64 `json:"cost"`
	ExchangeRate      *float64 `json:"exchange_rate"`
	AmountReceived    *float64 `json:"amount_received"`
	AmountInvoiced    *float64 `json:"amount_invoiced"`
	ProfitLocal       *float64 `json:"profit_local"`
	PaymentStatus     *string  `json:"payment_status"`
	GuaranteeValue    *float64 `json:"guarantee_value"`
	GuaranteeStart    *string  `json:"guarantee_start"`
	GuaranteeEnd      *string  `json:"guarantee_end"`
	GuaranteeRetained *float64 `json:"guarantee_retained"`
	Notes             *string  `json:"notes"`
	ManagerID         *int64   `json:"manager_id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	var req createProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	project := Project{
		TenderID:          req.TenderID,
		NameEN:            req.NameEN,
		NameAR:            req.NameAR,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            Status(req.Status),
		Currency:          req.Currency,
		ContractValue:     req.ContractValue,
		Cost:              req.Cost,
		ExchangeRate:      req.ExchangeRate,
		AmountReceived:    req.AmountReceived,
		AmountInvoiced:    req.AmountInvoiced,
		ProfitLocal:       req.ProfitLocal,
		GuaranteeValue:    req.GuaranteeValue,
		GuaranteeStart:    req.GuaranteeStart,
		GuaranteeEnd:      req.GuaranteeEnd,
		GuaranteeRetained: req.GuaranteeRetained,
		Notes:             req.Notes,
		ManagerID:         req.ManagerID,
	}
	if req.PaymentStatus != nil {
		payment := PaymentStatus(*req.PaymentStatus)
		project.PaymentStatus = &payment
	}
	id, err := h.service.Create(r.Context(), actor, project)
	if err != nil {
		h.respondError(w, "create project", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	project, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get project", err)
		return
	}
	supplierIDs, err := h.service.SupplierIDs(r.Context(), id)
	if err != nil {
		h.respondError(w, "list project suppliers", err)
		return
	}
	if supplierIDs == nil {
		supplierIDs = []int64{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"project":   project,
		"suppliers": supplierIDs,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
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
		h.respondError(w, "update project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type assignSuppliersRequest struct {
	SupplierIDs []int64 `json:"supplier_ids"`
}

func (h *Handler) handleAssignSuppliers(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req assignSuppliersRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.AssignSuppliers(r.Context(), actor, id, req.SupplierIDs); err != nil {
		h.respondError(w, "assign suppliers", err)
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
