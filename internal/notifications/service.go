package notifications

import (
	"context"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// Service fronts the rule engine and the notification store.
type Service struct {
	engine *Engine
	repo   Repository
}

// NewService constructs a Service.
func NewService(engine *Engine, repo Repository) *Service {
	return &Service{engine: engine, repo: repo}
}

// Refresh runs the rule engine. Safe to call on every dashboard fetch.
func (s *Service) Refresh(ctx context.Context) error {
	return s.engine.Run(ctx)
}

// List returns notifications for the role, newest first.
func (s *Service) List(ctx context.Context, role rbac.Role) ([]Notification, error) {
	return s.repo.ListByRole(ctx, role)
}

// MarkRead acknowledges a notification. Unknown ids are a no-op.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}
