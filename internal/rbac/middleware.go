package rbac

import (
	"log/slog"
	"net/http"

	"github.com/tenderdesk/tenderdesk/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
// The current role is resolved through an injected lookup so the package
// stays free of session plumbing.
type Middleware struct {
	CurrentRole func(r *http.Request) (Role, bool)
	Logger      *slog.Logger
}

// RequireArea ensures the current user's role covers the area.
func (m Middleware) RequireArea(area Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := m.CurrentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if err := Check(role, area); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("area denied", slog.String("role", string(role)), slog.String("area", string(area)))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
