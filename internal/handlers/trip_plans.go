package handlers

import (
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateTripPlan - POST /api/trip-plans
func (h *Handlers) CreateTripPlan(c *gin.Context) {
	var req models.CreateTripPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.services.TripPlans.Create(c.Request.Context(), actorOf(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, plan)
}

// ListMyTripPlans - GET /api/trip-plans/mine
func (h *Handlers) ListMyTripPlans(c *gin.Context) {
	plans, err := h.services.TripPlans.ListMine(c.Request.Context(), actorOf(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if plans == nil {
		plans = []models.TripPlan{}
	}
	ok(c, plans)
}

// ListTripPlans - GET /api/trip-plans
func (h *Handlers) ListTripPlans(c *gin.Context) {
	var q models.TripPlanListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.TripPlans.List(c.Request.Context(), actorOf(c), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

// GetTripPlan - GET /api/trip-plans/:id
func (h *Handlers) GetTripPlan(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}

	plan, err := h.services.TripPlans.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, plan)
}

// UpdateTripPlanStatus - PATCH /api/trip-plans/:id/status
func (h *Handlers) UpdateTripPlanStatus(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.UpdateTripPlanStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.services.TripPlans.UpdateStatus(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, plan)
}

// AssignTripPlan - PATCH /api/trip-plans/:id/assign
func (h *Handlers) AssignTripPlan(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.AssignTripPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.services.TripPlans.Assign(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, plan)
}

// QuoteTripPlan - PATCH /api/trip-plans/:id/quote
func (h *Handlers) QuoteTripPlan(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.QuoteTripPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.services.TripPlans.Quote(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, plan)
}
