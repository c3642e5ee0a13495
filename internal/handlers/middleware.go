package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"blogsite/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey     = "session"
	csrfFormField  = "csrf_token"
	msgLoginNeeded = "Unauthorized: Please log in"
)

// loadSession decodes the session cookie into the gin context.
func (h *Handler) loadSession(c *gin.Context) {
	c.Set(sessionKey, h.sessions.Load(c.Request))
	c.Next()
}

// currentSession returns the request's session; without loadSession it is a
// throwaway empty one.
func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	s := &session.Session{}
	c.Set(sessionKey, s)
	return s
}

// requireLogin sends anonymous visitors to the login page.
func (h *Handler) requireLogin(c *gin.Context) {
	s := currentSession(c)
	if s.LoggedIn {
		c.Next()
		return
	}

	if h.log != nil {
		h.log.Infow("auth_guard_redirect", "path", c.Request.URL.Path)
	}
	s.AddFlash(session.FlashDanger, msgLoginNeeded)
	h.redirect(c, "/login")
	c.Abort()
}

// verifyCSRF rejects requests whose token does not match the session's. Form
// posts carry it as a field, GET links as a query parameter.
func (h *Handler) verifyCSRF(c *gin.Context) {
	s := currentSession(c)
	token := c.PostForm(csrfFormField)
	if c.Request.Method == http.MethodGet {
		token = c.Query(csrfFormField)
	}
	if s.CSRFToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) != 1 {
		if h.log != nil {
			h.log.Infow("csrf_rejected", "path", c.Request.URL.Path)
		}
		h.renderError(c, http.StatusForbidden, "The form has expired, please go back and try again.")
		c.Abort()
		return
	}
	c.Next()
}

// requestLogger writes one line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}
