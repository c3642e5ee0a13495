package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	pageError = "error"

	msgNotFound = "Sorry, that page does not exist."
	msgInternal = "Something went wrong on our side."

	msgMalformedForm = "Malformed form submission."
)

// render saves the session and renders page with the values every template expects.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	s := currentSession(c)
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = s
	data["CSRF"] = s.EnsureCSRF()
	data["Flashes"] = s.PopFlashes()

	h.saveSession(c)
	c.HTML(status, page, data)
}

// redirect saves the session (pending flashes included) and redirects.
func (h *Handler) redirect(c *gin.Context, location string) {
	h.saveSession(c)
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) saveSession(c *gin.Context) {
	if err := h.sessions.Save(c.Writer, currentSession(c)); err != nil && h.log != nil {
		h.log.Errorw("session_save_failed", "err", err)
	}
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, pageError, gin.H{"Status": status, "Message": message})
}

func (h *Handler) notFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, msgNotFound)
}

// internalError logs err under logKey and renders the 500 page.
func (h *Handler) internalError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	h.renderError(c, http.StatusInternalServerError, msgInternal)
}
