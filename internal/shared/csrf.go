package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// CSRFHeader is the request header carrying the CSRF token.
const CSRFHeader = "X-CSRF-Token"

// CSRFManager issues and verifies CSRF tokens bound to a session token.
// Tokens are stateless: an HMAC over the session token, so no server-side
// storage is needed beyond the session itself.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// TokenFor derives the CSRF token for a session token.
func (m *CSRFManager) TokenFor(sessionToken string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(sessionToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyToken compares the supplied token with the expected one.
func (m *CSRFManager) VerifyToken(sessionToken, token string) error {
	if token == "" {
		return ErrCSRFTokenMissing
	}
	expected := m.TokenFor(sessionToken)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}
