package suppliers

import (
	"context"
	"strconv"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Service exposes supplier directory operations. Reads need only an
// authenticated user; mutations require the suppliers area.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns the supplier directory.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Get returns a single supplier.
func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.Find(ctx, id)
}

// Create registers a supplier.
func (s *Service) Create(ctx context.Context, actor *auth.User, supplier Supplier) (int64, error) {
	if err := rbac.Check(actor.Role, rbac.AreaSuppliers); err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return 0, err
	}
	s.record(ctx, actor, "create", id, map[string]any{"name": supplier.NameEN})
	return id, nil
}

// Update applies a partial change set to a supplier.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, changes map[string]any) error {
	if err := rbac.Check(actor.Role, rbac.AreaSuppliers); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return err
	}
	s.record(ctx, actor, "update", id, map[string]any{"fields": len(changes)})
	return nil
}

// Delete removes a supplier from the directory.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	if err := rbac.Check(actor.Role, rbac.AreaSuppliers); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actor *auth.User, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "supplier",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
