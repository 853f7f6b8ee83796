package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]auth.User, error)
	CreateUser(ctx context.Context, user auth.User) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username, COALESCE(full_name, ''), role, password_hash, language, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []auth.User
	for rows.Next() {
		var user auth.User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &role, &user.PasswordHash, &user.Language, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Role = rbac.Role(role)
		result = append(result, user)
	}
	return result, rows.Err()
}

// CreateUser inserts a user row. A duplicate username maps to ErrUsernameTaken.
func (r *Repository) CreateUser(ctx context.Context, user auth.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, full_name, role, password_hash, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		user.Username, user.FullName, user.Role, user.PasswordHash, user.Language,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return id, nil
}

var _ RepositoryPort = (*Repository)(nil)
