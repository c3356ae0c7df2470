package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the CRM session token.
const SessionCookieName = "crm_session"

// Authenticator verifies a session token. Keeping the policy behind this
// interface means handlers and middleware never see the shared secret.
type Authenticator interface {
	Verify(token string) bool
}

// SharedPasswordAuthenticator verifies tokens against a single configured
// password. The configured value may be a bcrypt hash; otherwise it is
// compared in constant time.
type SharedPasswordAuthenticator struct {
	secret string
}

// NewSharedPassword creates an authenticator for the given secret.
func NewSharedPassword(secret string) *SharedPasswordAuthenticator {
	return &SharedPasswordAuthenticator{secret: secret}
}

// Verify reports whether token matches the configured secret.
func (a *SharedPasswordAuthenticator) Verify(token string) bool {
	if token == "" || a.secret == "" {
		return false
	}
	if isBcryptHash(a.secret) {
		return bcrypt.CompareHashAndPassword([]byte(a.secret), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.secret), []byte(token)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
