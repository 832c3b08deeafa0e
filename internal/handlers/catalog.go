package handlers

import (
	"net/http"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// The catalog routes are mounted once per service kind, so each handler is
// built for a fixed kind.

// ListServices - GET /api/{kind}s
func (h *Handlers) ListServices(kind models.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.ServiceListQuery
		if !bindQuery(c, &q) {
			return
		}

		page, err := h.services.Catalog.List(c.Request.Context(), kind, q)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, page)
	}
}

// GetService - GET /api/{kind}s/:idOrSlug
func (h *Handlers) GetService(kind models.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, err := h.services.Catalog.Get(c.Request.Context(), kind, c.Param("idOrSlug"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, svc)
	}
}

// CreateService - POST /api/{kind}s
func (h *Handlers) CreateService(kind models.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ServiceRequest
		if !bindJSON(c, &req) {
			return
		}

		svc, err := h.services.Catalog.Create(c.Request.Context(), kind, &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		created(c, svc)
	}
}

// UpdateService - PUT /api/{kind}s/:id
func (h *Handlers) UpdateService(kind models.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, found := pathID(c, "idOrSlug")
		if !found {
			return
		}
		var req models.ServiceRequest
		if !bindJSON(c, &req) {
			return
		}

		svc, err := h.services.Catalog.Update(c.Request.Context(), kind, id, &req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, svc)
	}
}

// DeleteService - DELETE /api/{kind}s/:id
func (h *Handlers) DeleteService(kind models.ServiceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, found := pathID(c, "idOrSlug")
		if !found {
			return
		}

		if err := h.services.Catalog.Delete(c.Request.Context(), kind, id); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.OKMessage("Deleted", nil))
	}
}

// Upload - POST /api/uploads
func (h *Handlers) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.Validation(apperrors.Field("file", "is required")))
		return
	}

	f, err := file.Open()
	if err != nil {
		_ = c.Error(apperrors.Validation(apperrors.Field("file", "could not be read")))
		return
	}
	defer f.Close()

	resp, err := h.services.Catalog.Upload(c.Request.Context(), c.PostForm("folder"), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, resp)
}
