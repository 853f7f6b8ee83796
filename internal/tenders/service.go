package tenders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Service exposes tender operations. Listing and reading need only an
// authenticated user; every mutation requires the tenders area.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns tenders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Tender, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single tender.
func (s *Service) Get(ctx context.Context, id int64) (*Tender, error) {
	return s.repo.Find(ctx, id)
}

// Create records a new tender for the acting user.
func (s *Service) Create(ctx context.Context, actor *auth.User, t Tender) (int64, error) {
	if err := rbac.Check(actor.Role, rbac.AreaTenders); err != nil {
		return 0, err
	}
	if t.Status == "" {
		t.Status = StatusDraft
	}
	if !t.Status.Valid() {
		return 0, fmt.Errorf("%w: unknown tender status %q", ErrInvalidInput, t.Status)
	}
	if !t.TenderType.Valid() {
		return 0, fmt.Errorf("%w: unknown tender type %q", ErrInvalidInput, t.TenderType)
	}
	t.CreatedBy = &actor.ID
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return 0, err
	}
	s.record(ctx, actor, "create", id, map[string]any{"title": t.TitleEN})
	return id, nil
}

// Update applies a partial change set to a tender.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, changes map[string]any) error {
	if err := rbac.Check(actor.Role, rbac.AreaTenders); err != nil {
		return err
	}
	if status, ok := changes["status"].(string); ok && !Status(status).Valid() {
		return fmt.Errorf("%w: unknown tender status %q", ErrInvalidInput, status)
	}
	if tenderType, ok := changes["tender_type"].(string); ok && !Type(tenderType).Valid() {
		return fmt.Errorf("%w: unknown tender type %q", ErrInvalidInput, tenderType)
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return err
	}
	s.record(ctx, actor, "update", id, map[string]any{"fields": len(changes)})
	return nil
}

// Delete removes a tender.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	if err := rbac.Check(actor.Role, rbac.AreaTenders); err != nil {
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
		Entity:   "tender",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
