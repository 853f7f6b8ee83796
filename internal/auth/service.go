package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/tenderdesk/tenderdesk/internal/shared"
)

const (
	// SessionDuration is the absolute session lifetime.
	SessionDuration = 12 * time.Hour
	sessionTokenLen = 24
)

// Service wraps authentication and session business rules.
type Service struct {
	repo Repository
	now  func() time.Time

	// fallbackHash is verified against when the username is unknown,
	// keeping the failure path indistinguishable from a wrong password.
	fallbackHash string
}

// NewService constructs a new Service.
func NewService(repo Repository) (*Service, error) {
	fallback, err := HashPassword("tenderdesk-fallback")
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, now: time.Now, fallbackHash: fallback}, nil
}

// WithClock overrides the wall clock, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Authenticate validates username/password credentials. The result never
// distinguishes an unknown user from a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			VerifyPassword(password, s.fallbackHash)
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CreateSession issues a fresh opaque token bound to the user. Prior
// sessions for the same user stay valid.
func (s *Service) CreateSession(ctx context.Context, userID int64) (*Session, error) {
	buf := make([]byte, sessionTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	sess := &Session{
		UserID:    userID,
		Token:     hex.EncodeToString(buf),
		ExpiresAt: s.now().UTC().Add(SessionDuration),
	}
	if err := s.repo.CreateSession(ctx, sess.UserID, sess.Token, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResolveSession returns the user bound to an active session token.
// Expiry is lazy: a session found past its deadline is deleted here and
// reported the same as an unknown token.
func (s *Service) ResolveSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	sess, err := s.repo.FindSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	if sess.Expired(s.now().UTC()) {
		if err := s.repo.DeleteSessionByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, shared.ErrNotAuthenticated
	}
	user, err := s.repo.FindUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	return user, nil
}

// DestroySession deletes the session row if present; idempotent.
func (s *Service) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSessionByToken(ctx, token)
}
