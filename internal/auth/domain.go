package auth

import (
	"time"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// User represents a portal user account.
type User struct {
	ID           int64
	Username     string
	FullName     string
	Role         rbac.Role
	PasswordHash string
	Language     string
	CreatedAt    time.Time
}

// Session binds an opaque token to a user until expires_at.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its absolute expiry.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
