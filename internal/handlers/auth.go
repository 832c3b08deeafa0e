package handlers

import (
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.services.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, resp)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, resp)
}

// Me - GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.services.Auth.Me(c.Request.Context(), actorOf(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}

// UpdateUserRole - PATCH /api/users/:id/role
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.Auth.UpdateRole(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}
