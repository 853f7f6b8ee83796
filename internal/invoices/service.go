package invoices

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Service exposes invoice operations. Everything here is money, so both
// reads and writes require the finance area.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListByProject returns a project's invoices.
func (s *Service) ListByProject(ctx context.Context, actor *auth.User, projectID int64) ([]Invoice, error) {
	if err := rbac.Check(actor.Role, rbac.AreaFinance); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

// Create records a new invoice against a project.
func (s *Service) Create(ctx context.Context, actor *auth.User, inv Invoice) (int64, error) {
	if err := rbac.Check(actor.Role, rbac.AreaFinance); err != nil {
		return 0, err
	}
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	if !inv.Status.Valid() {
		return 0, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, inv.Status)
	}
	if inv.Amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return 0, err
	}
	s.record(ctx, actor, "create", id, map[string]any{"project_id": inv.ProjectID, "amount": inv.Amount})
	return id, nil
}

// Update applies a partial change set to an invoice.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, changes map[string]any) error {
	if err := rbac.Check(actor.Role, rbac.AreaFinance); err != nil {
		return err
	}
	if status, ok := changes["status"].(string); ok && !Status(status).Valid() {
		return fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, status)
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return err
	}
	s.record(ctx, actor, "update", id, map[string]any{"fields": len(changes)})
	return nil
}

func (s *Service) record(ctx context.Context, actor *auth.User, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "invoice",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
