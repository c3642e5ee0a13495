// Package session keeps per-visitor state in a signed cookie. The cookie value
// is an HS256 JWT, so the server trusts its contents without storing anything.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

var ErrInvalidSession = errors.New("invalid session")

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type Session struct {
	LoggedIn  bool
	Username  string
	CSRFToken string
	Flashes   []Flash
}

// Login marks the session authenticated and rotates the CSRF token.
func (s *Session) Login(username string) {
	s.LoggedIn = true
	s.Username = username
	s.CSRFToken = uuid.NewString()
}

// Clear drops everything, pending flashes included.
func (s *Session) Clear() {
	*s = Session{}
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns pending flashes and removes them from the session.
func (s *Session) PopFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}

// EnsureCSRF returns the session's CSRF token, minting one if needed.
func (s *Session) EnsureCSRF() string {
	if s.CSRFToken == "" {
		s.CSRFToken = uuid.NewString()
	}
	return s.CSRFToken
}

// claims is the wire form of a Session.
type claims struct {
	jwt.RegisteredClaims
	LoggedIn bool    `json:"logged_in,omitempty"`
	Username string  `json:"username,omitempty"`
	CSRF     string  `json:"csrf,omitempty"`
	Flashes  []Flash `json:"flashes,omitempty"`
}

type Manager struct {
	key        []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(secret, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		key:        []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

func (m *Manager) CookieName() string { return m.cookieName }

// Encode signs the session into a cookie value.
func (m *Manager) Encode(s *Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		LoggedIn: s.LoggedIn,
		Username: s.Username,
		CSRF:     s.CSRFToken,
		Flashes:  s.Flashes,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns its session.
func (m *Manager) Decode(value string) (*Session, error) {
	token, err := jwt.ParseWithClaims(value, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	return &Session{
		LoggedIn:  c.LoggedIn,
		Username:  c.Username,
		CSRFToken: c.CSRF,
		Flashes:   c.Flashes,
	}, nil
}

// Load returns the request's session. A missing, expired or tampered cookie
// yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}
	s, err := m.Decode(cookie.Value)
	if err != nil {
		return &Session{}
	}
	return s
}

// Save writes the session cookie. Call before the response body is written.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	value, err := m.Encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
