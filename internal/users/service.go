package users

import (
	"context"
	"strings"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// Service handles user provisioning.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateInput carries the fields for provisioning a user.
type CreateInput struct {
	Username string
	Password string
	FullName string
	Role     rbac.Role
	Language string
}

// List returns all users. Callers must not leak password hashes.
func (s *Service) List(ctx context.Context) ([]auth.User, error) {
	return s.repo.ListUsers(ctx)
}

// Create provisions a user with a freshly derived password hash. The actor
// must hold no particular area; the handler gates on admin role.
func (s *Service) Create(ctx context.Context, actor *auth.User, in CreateInput) (int64, error) {
	if !in.Role.Valid() {
		return 0, ErrUnknownRole
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	id, err := s.repo.CreateUser(ctx, auth.User{
		Username:     strings.TrimSpace(in.Username),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		PasswordHash: hash,
		Language:     NormalizeLanguage(in.Language),
	})
	if err != nil {
		return 0, err
	}
	if s.audit != nil && actor != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			Action:   "create",
			Entity:   "user",
			EntityID: in.Username,
			Meta:     map[string]any{"role": in.Role},
		})
	}
	return id, nil
}
