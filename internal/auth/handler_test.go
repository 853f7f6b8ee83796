package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/rbac"
	"github.com/tenderdesk/tenderdesk/internal/shared"
	_ "github.com/tenderdesk/tenderdesk/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]auth.Session
}

func newStubRepo(t *testing.T, username, password string, role rbac.Role) *stubRepo {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &stubRepo{
		user:     &auth.User{ID: 1, Username: username, Role: role, PasswordHash: hash, Language: "en"},
		sessions: make(map[string]auth.Session),
	}
}

func (s *stubRepo) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user != nil && s.user.Username == username {
		return s.user, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindUserByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	s.sessions[token] = auth.Session{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (s *stubRepo) FindSessionByToken(ctx context.Context, token string) (*auth.Session, error) {
	if sess, ok := s.sessions[token]; ok {
		return &sess, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) DeleteSessionByToken(ctx context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoginHandler(t *testing.T) (*auth.Handler, *auth.Service) {
	t.Helper()
	repo := newStubRepo(t, "admin", "Admin123!", rbac.RoleAdmin)
	svc, err := auth.NewService(repo)
	require.NoError(t, err)
	handler := auth.NewHandler(testLogger(), svc, shared.NewCSRFManager("csrfsecret"), false)
	return handler, svc
}

func TestLoginSetsSessionCookie(t *testing.T) {
	handler, svc := newLoginHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"Admin123!"}`))
	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	cookie := sessionCookie(t, res)
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)

	user, err := svc.ResolveSession(req.Context(), cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "admin", user.Username)
	require.Contains(t, res.Body.String(), `"csrf_token"`)
	require.Contains(t, res.Body.String(), `"permissions"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, _ := newLoginHandler(t)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"ghost","password":"Admin123!"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		res := httptest.NewRecorder()
		handler.HandleLoginForTest(res, req)
		require.Equal(t, http.StatusUnauthorized, res.Code)
	}
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	handler, svc := newLoginHandler(t)

	login := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"Admin123!"}`))
	loginRes := httptest.NewRecorder()
	handler.HandleLoginForTest(loginRes, login)
	token := sessionCookie(t, loginRes).Value

	logout := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	logout.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	logoutRes := httptest.NewRecorder()
	handler.HandleLogoutForTest(logoutRes, logout)

	require.Equal(t, http.StatusNoContent, logoutRes.Code)
	cleared := sessionCookie(t, logoutRes)
	require.Equal(t, -1, cleared.MaxAge)

	_, err := svc.ResolveSession(logout.Context(), token)
	require.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
