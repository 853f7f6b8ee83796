package projects

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Service exposes project operations. Reads need only an authenticated user;
// mutations require the projects area.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns projects matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Project, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Find(ctx, id)
}

// SupplierIDs returns the suppliers assigned to a project.
func (s *Service) SupplierIDs(ctx context.Context, projectID int64) ([]int64, error) {
	return s.repo.SupplierIDs(ctx, projectID)
}

// Create records a new project under a tender.
func (s *Service) Create(ctx context.Context, actor *auth.User, p Project) (int64, error) {
	if err := rbac.Check(actor.Role, rbac.AreaProjects); err != nil {
		return 0, err
	}
	if p.Status == "" {
		p.Status = StatusPlanning
	}
	if !p.Status.Valid() {
		return 0, fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, p.Status)
	}
	if p.PaymentStatus == nil {
		unpaid := PaymentUnpaid
		p.PaymentStatus = &unpaid
	}
	if !p.PaymentStatus.Valid() {
		return 0, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, *p.PaymentStatus)
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	s.record(ctx, actor, "create", id, map[string]any{"name": p.NameEN, "tender_id": p.TenderID})
	return id, nil
}

// Update applies a partial change set to a project.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, changes map[string]any) error {
	if err := rbac.Check(actor.Role, rbac.AreaProjects); err != nil {
		return err
	}
	if status, ok := changes["status"].(string); ok && !Status(status).Valid() {
		return fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, status)
	}
	if payment, ok := changes["payment_status"].(string); ok && !PaymentStatus(payment).Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, payment)
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return err
	}
	s.record(ctx, actor, "update", id, map[string]any{"fields": len(changes)})
	return nil
}

// AssignSuppliers replaces the project's supplier assignments.
func (s *Service) AssignSuppliers(ctx context.Context, actor *auth.User, projectID int64, supplierIDs []int64) error {
	if err := rbac.Check(actor.Role, rbac.AreaProjects); err != nil {
		return err
	}
	if _, err := s.repo.Find(ctx, projectID); err != nil {
		return err
	}
	if err := s.repo.AssignSuppliers(ctx, projectID, supplierIDs); err != nil {
		return err
	}
	s.record(ctx, actor, "assign_suppliers", projectID, map[string]any{"count": len(supplierIDs)})
	return nil
}

func (s *Service) record(ctx context.Context, actor *auth.User, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "project",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
