package handlers

import (
	"errors"
	"net/http"

	"blogsite/internal/service"
	"blogsite/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	pageRegister = "register"
	pageLogin    = "login"

	msgRegistered         = "You are now registered and can log in"
	msgLoggedIn           = "You are now logged in"
	msgLoggedOut          = "You are now logged out"
	msgInvalidCredentials = "Invalid credentials"
)

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, pageRegister, gin.H{"Form": registerForm{}})
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if err := bindForm(c, &form); err != nil {
		var fields service.FieldErrors
		if !errors.As(err, &fields) {
			h.renderError(c, http.StatusBadRequest, msgMalformedForm)
			return
		}
		h.registerFailed(c, form, err)
		return
	}

	id, err := h.services.Register(c.Request.Context(), form.input())
	if err != nil {
		h.registerFailed(c, form, err)
		return
	}

	if h.log != nil {
		h.log.Infow("auth_registered", "user_id", id, "username", form.Username)
	}
	currentSession(c).AddFlash(session.FlashSuccess, msgRegistered)
	h.redirect(c, "/login")
}

// registerFailed re-renders the form for field problems, anything else is a 500.
func (h *Handler) registerFailed(c *gin.Context, form registerForm, err error) {
	var fields service.FieldErrors
	if !errors.As(err, &fields) {
		if errors.Is(err, service.ErrEmptyPassword) {
			fields = service.FieldErrors{"password": service.MsgRequired}
		} else {
			h.internalError(c, "auth_register_failed", err, "username", form.Username)
			return
		}
	}

	form.Password, form.Confirm = "", ""
	h.render(c, http.StatusUnprocessableEntity, pageRegister, gin.H{"Form": form, "Errors": fields})
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, pageLogin, gin.H{"Username": ""})
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.services.Authenticate(c.Request.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		if h.log != nil {
			h.log.Infow("auth_login_failed", "username", username, "err", err)
		}
		h.render(c, http.StatusUnauthorized, pageLogin, gin.H{
			"Error":    msgInvalidCredentials,
			"Username": username,
		})
		return
	case err != nil:
		h.internalError(c, "auth_login_error", err, "username", username)
		return
	}

	s := currentSession(c)
	s.Login(username)
	s.AddFlash(session.FlashSuccess, msgLoggedIn)
	h.redirect(c, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	s := currentSession(c)
	s.Clear()
	s.AddFlash(session.FlashSuccess, msgLoggedOut)
	h.redirect(c, "/login")
}
