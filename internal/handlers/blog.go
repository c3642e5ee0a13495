package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"blogsite/internal/models"
	"blogsite/internal/service"
	"blogsite/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	pageIndex     = "index"
	pageAbout     = "about"
	pagePost      = "post"
	pageDashboard = "dashboard"
	pageAddBlog   = "add_blog"
	pageEditBlog  = "edit_blog"

	msgNoBlogs      = "No blogs found"
	msgPostCreated  = "Article created"
	msgPostUpdated  = "Blog updated"
	msgDeleteFailed = "There was a problem deleting data."
)

func (h *Handler) index(c *gin.Context) {
	posts, err := h.services.ListPosts(c.Request.Context(), 0)
	if err != nil {
		h.internalError(c, "post_list_failed", err)
		return
	}
	h.render(c, http.StatusOK, pageIndex, gin.H{"Posts": posts})
}

func (h *Handler) about(c *gin.Context) {
	h.render(c, http.StatusOK, pageAbout, nil)
}

func (h *Handler) showPost(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, pagePost, gin.H{"Post": post})
}

// loadPost resolves :id to a post, rendering 404/500 itself when it can't.
func (h *Handler) loadPost(c *gin.Context) (*models.BlogPost, bool) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return nil, false
	}
	post, err := h.services.GetPost(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
		return nil, false
	case err != nil:
		h.internalError(c, "post_get_failed", err, "id", id)
		return nil, false
	}
	return post, true
}

func (h *Handler) dashboard(c *gin.Context) {
	posts, err := h.services.ListPosts(c.Request.Context(), 0)
	if err != nil {
		h.internalError(c, "post_list_failed", err)
		return
	}
	data := gin.H{"Posts": posts}
	if len(posts) == 0 {
		data["Msg"] = msgNoBlogs
	}
	h.render(c, http.StatusOK, pageDashboard, data)
}

func (h *Handler) addBlogPage(c *gin.Context) {
	h.render(c, http.StatusOK, pageAddBlog, gin.H{"Form": postForm{}, "Action": "/add_blog"})
}

// createBlog serves both POST /add_blog and POST /save_blog.
func (h *Handler) createBlog(c *gin.Context) {
	var form postForm
	if err := bindForm(c, &form); err != nil {
		h.postFormFailed(c, pageAddBlog, "/add_blog", form, err)
		return
	}

	id, err := h.services.CreatePost(c.Request.Context(), form.input())
	if err != nil {
		h.internalError(c, "post_create_failed", err)
		return
	}

	if h.log != nil {
		h.log.Infow("post_created", "id", id, "username", currentSession(c).Username)
	}
	currentSession(c).AddFlash(session.FlashSuccess, msgPostCreated)
	h.redirect(c, "/dashboard")
}

func (h *Handler) editBlogPage(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	form := postForm{Title: post.Title, Subtitle: post.Subtitle, Author: post.Author, Content: post.Content}
	h.render(c, http.StatusOK, pageEditBlog, gin.H{"Form": form, "Action": editAction(post.ID)})
}

func (h *Handler) updateBlog(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	var form postForm
	if err := bindForm(c, &form); err != nil {
		h.postFormFailed(c, pageEditBlog, editAction(post.ID), form, err)
		return
	}

	err := h.services.UpdatePost(c.Request.Context(), post.ID, form.input())
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
		return
	case err != nil:
		h.internalError(c, "post_update_failed", err, "id", post.ID)
		return
	}

	currentSession(c).AddFlash(session.FlashSuccess, msgPostUpdated)
	h.redirect(c, "/dashboard")
}

func (h *Handler) deleteBlog(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	err := h.services.DeletePost(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.notFound(c)
		return
	case err != nil:
		if h.log != nil {
			h.log.Errorw("post_delete_failed", "id", id, "err", err)
		}
		c.String(http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	if h.log != nil {
		h.log.Infow("post_deleted", "id", id, "username", currentSession(c).Username)
	}
	h.redirect(c, "/dashboard")
}

// postFormFailed re-renders a blog form with its field errors.
func (h *Handler) postFormFailed(c *gin.Context, page, action string, form postForm, err error) {
	var fields service.FieldErrors
	if !errors.As(err, &fields) {
		h.renderError(c, http.StatusBadRequest, msgMalformedForm)
		return
	}
	h.render(c, http.StatusUnprocessableEntity, page, gin.H{"Form": form, "Errors": fields, "Action": action})
}

func editAction(id int) string {
	return "/edit_blog/" + strconv.Itoa(id)
}
