// Package session issues and resolves signed session tokens. A request either
// resolves to an authenticated account Identity or is anonymous.
package session

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName  = "session"
	TokenExpiry = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid session token")

// Identity is the caller resolved from a request. The zero value is anonymous.
type Identity struct {
	AccountID string
	Username  string
}

func (id Identity) Anonymous() bool {
	return id.AccountID == ""
}

type Manager struct {
	key    []byte
	secure bool
	now    func() time.Time
}

// NewManager signs tokens with secret. An empty secret gets a random key, so
// sessions do not survive a restart.
func NewManager(secret string, secureCookies bool) *Manager {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic("failed to generate session key: " + err.Error())
		}
	}
	return &Manager{key: key, secure: secureCookies, now: time.Now}
}

func (m *Manager) Issue(id Identity) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":      id.AccountID,
		"username": id.Username,
		"exp":      now.Add(TokenExpiry).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *Manager) Parse(tokenStr string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	uname, _ := claims["username"].(string)
	return Identity{AccountID: sub, Username: uname}, nil
}

// Resolve reads the session from the cookie, falling back to a bearer token.
// Missing or invalid credentials resolve to the anonymous identity.
func (m *Manager) Resolve(r *http.Request) Identity {
	var tokenStr string
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		tokenStr = c.Value
	} else if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tokenStr = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if tokenStr == "" {
		return Identity{}
	}
	id, err := m.Parse(tokenStr)
	if err != nil {
		return Identity{}
	}
	return id
}

func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
