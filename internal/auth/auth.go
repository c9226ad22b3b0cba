// Package auth verifies the admin credential and manages the signed
// session cookie. Sessions are stateless: the cookie carries a signed token
// and logout simply clears the client's copy.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "journal_session"

// sessionTTL bounds how long an issued token remains valid.
const sessionTTL = 24 * time.Hour

// ErrInvalidInput is returned by VerifyCredentials when the username or
// password is missing; both are required together.
var ErrInvalidInput = errors.New("username and password are required")

// Manager holds the process-wide credential and signing configuration,
// read-only after construction.
type Manager struct {
	adminUser string
	adminHash []byte
	secret    []byte
	now       func() time.Time
}

// NewManager creates a Manager for the single admin identity.
func NewManager(secret, adminUser string, adminHash []byte) *Manager {
	return &Manager{
		adminUser: adminUser,
		adminHash: adminHash,
		secret:    []byte(secret),
		now:       time.Now,
	}
}

// VerifyCredentials checks a submitted credential pair against the
// configured admin username and bcrypt hash. The bcrypt comparison runs
// regardless of the username result so both paths take comparable time.
func (m *Manager) VerifyCredentials(username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, ErrInvalidInput
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUser)) == 1
	passErr := bcrypt.CompareHashAndPassword(m.adminHash, []byte(password))
	return userOK && passErr == nil, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// IssueSession produces a signed token binding the given identity.
func (m *Manager) IssueSession(identity string) (string, error) {
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    "journal",
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ResolveSession verifies a token and returns the bound identity. A missing,
// malformed, tampered, or expired token resolves to ok == false; it never
// fails loudly since it runs on every request.
func (m *Manager) ResolveSession(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !parsed.Valid {
		return "", false
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

// IsAdmin reports whether the identity is the configured admin user.
func (m *Manager) IsAdmin(identity string) bool {
	return identity != "" && identity == m.adminUser
}

// Identity resolves the session carried by the request cookie, if any.
func (m *Manager) Identity(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return m.ResolveSession(cookie.Value)
}

// SetSessionCookie attaches the session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie instructs the client to drop its session token.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
