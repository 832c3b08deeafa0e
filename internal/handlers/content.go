package handlers

import (
	"net/http"

	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// Blog

// ListBlogPosts - GET /api/blog
func (h *Handlers) ListBlogPosts(c *gin.Context) {
	var q models.BlogListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Blog.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

// GetBlogPost - GET /api/blog/:slug
func (h *Handlers) GetBlogPost(c *gin.Context) {
	post, err := h.services.Blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, post)
}

// CreateBlogPost - POST /api/blog
func (h *Handlers) CreateBlogPost(c *gin.Context) {
	var req models.BlogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.services.Blog.Create(c.Request.Context(), actorOf(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, post)
}

// UpdateBlogPost - PUT /api/blog/:id
func (h *Handlers) UpdateBlogPost(c *gin.Context) {
	id, found := pathID(c, "slug")
	if !found {
		return
	}
	var req models.BlogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.services.Blog.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, post)
}

// DeleteBlogPost - DELETE /api/blog/:id
func (h *Handlers) DeleteBlogPost(c *gin.Context) {
	id, found := pathID(c, "slug")
	if !found {
		return
	}

	if err := h.services.Blog.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Post unpublished", nil))
}

// Newsletter

// Subscribe - POST /api/newsletter/subscribe
func (h *Handlers) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.services.Newsletter.Subscribe(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Subscribed", sub))
}

// Unsubscribe - POST /api/newsletter/unsubscribe
func (h *Handlers) Unsubscribe(c *gin.Context) {
	var req models.UnsubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.services.Newsletter.Unsubscribe(c.Request.Context(), &req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Unsubscribed", nil))
}

// ListSubscribers - GET /api/newsletter/subscribers
func (h *Handlers) ListSubscribers(c *gin.Context) {
	var q models.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Newsletter.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

// Contact

// SubmitContact - POST /api/contact
func (h *Handlers) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.services.Contact.Submit(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, models.OKMessage("Message received", msg))
}

// ListContactMessages - GET /api/contact
func (h *Handlers) ListContactMessages(c *gin.Context) {
	var q models.ContactListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Contact.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

// MarkContactHandled - PATCH /api/contact/:id/handled
func (h *Handlers) MarkContactHandled(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}

	msg, err := h.services.Contact.MarkHandled(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, msg)
}
