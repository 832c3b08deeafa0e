package handlers

import (
	"net/http"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/middleware"
	"gotrip/internal/models"
	"gotrip/internal/service"
	"gotrip/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers adapts HTTP requests to the service layer. Every failure is
// attached with c.Error and rendered by middleware.ErrorEnvelope.
type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

func actorOf(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

// pathID parses a uuid path parameter. Malformed ids cannot match a record.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.NotFound("Resource not found"))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, q any) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		_ = c.Error(validation.FromBinding(err))
		return false
	}
	return true
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, models.OK(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, models.OK(data))
}

// NoRoute - unknown paths get the envelope too
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.Envelope{Success: false, Message: "Route not found"})
}
