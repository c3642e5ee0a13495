package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"blogsite/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	maxAPILimit = 100

	errInvalidLimit = "limit must be an integer between 0 and 100"
	errPostNotFound = "post not found"
	errListPosts    = "failed to load posts"
	errGetPost      = "failed to load post"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List posts
// @Description  Newest first. Bodies are reduced to a plain-text excerpt.
// @Tags         posts
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of posts (0 = all)"  minimum(0)  maximum(100)
// @Success      200    {array}   models.PostSummary
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/posts [get]
func (h *Handler) apiListPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxAPILimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = n
	}

	posts, err := h.services.ListSummaries(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListPosts, "api_list_posts_failed", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// @Summary      Get post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  models.BlogPost
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/posts/{id} [get]
func (h *Handler) apiGetPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errPostNotFound})
		return
	}

	post, err := h.services.GetPost(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errPostNotFound})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errGetPost, "api_get_post_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, post)
}
