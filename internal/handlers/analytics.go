package handlers

import (
	"net/http"

	"gotrip/internal/middleware"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrackEvent - POST /api/analytics/track
// Anonymous visitors are tracked too; a valid token links the event to its user.
func (h *Handlers) TrackEvent(c *gin.Context) {
	var req models.TrackEventRequest
	if !bindJSON(c, &req) {
		return
	}

	var userID *uuid.UUID
	if actor, found := middleware.ActorFrom(c); found {
		userID = &actor.ID
	}

	if err := h.services.Analytics.Track(c.Request.Context(), userID, &req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, models.OK(nil))
}

// Dashboard - GET /api/analytics/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.services.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, d)
}

// Realtime - GET /api/analytics/realtime
func (h *Handlers) Realtime(c *gin.Context) {
	rt, err := h.services.Analytics.Realtime(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, rt)
}
