package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tenderdesk/tenderdesk/internal/platform/httpx"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session"

// Middleware resolves the session cookie into an authenticated user.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireUser rejects requests without an active session and stores the
// resolved user in the request context.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolve(r)
		if err != nil {
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				if m.Logger != nil {
					m.Logger.Error("resolve session", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			httpx.RespondError(w, shared.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

func (m Middleware) resolve(r *http.Request) (*User, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, shared.ErrNotAuthenticated
	}
	return m.Service.ResolveSession(r.Context(), cookie.Value)
}

// CurrentRole adapts the context user for the rbac middleware.
func CurrentRole(r *http.Request) (rbac.Role, bool) {
	user := UserFromContext(r.Context())
	if user == nil {
		return "", false
	}
	return user.Role, true
}
