package handlers

import (
	"net/http"

	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.services.Bookings.Create(c.Request.Context(), actorOf(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, booking)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	var q models.BookingListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Bookings.List(c.Request.Context(), actorOf(c), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

// ListMyBookings - GET /api/bookings/mine
func (h *Handlers) ListMyBookings(c *gin.Context) {
	bookings, err := h.services.Bookings.ListMine(c.Request.Context(), actorOf(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}

	booking, err := h.services.Bookings.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, booking)
}

// GetBookingByReference - GET /api/bookings/reference/:reference
func (h *Handlers) GetBookingByReference(c *gin.Context) {
	booking, err := h.services.Bookings.GetByReference(c.Request.Context(), actorOf(c), c.Param("reference"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, booking)
}

// UpdateBookingStatus - PATCH /api/bookings/:id/status
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.services.Bookings.UpdateStatus(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, booking)
}

// UpdateBookingPaymentStatus - PATCH /api/bookings/:id/payment-status
func (h *Handlers) UpdateBookingPaymentStatus(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.services.Bookings.UpdatePaymentStatus(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, booking)
}

// RecalculateBooking - POST /api/bookings/:id/recalculate
func (h *Handlers) RecalculateBooking(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}
	var req models.RecalculateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.services.Bookings.Recalculate(c.Request.Context(), actorOf(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, booking)
}

// ArchiveBooking - DELETE /api/bookings/:id
func (h *Handlers) ArchiveBooking(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}

	if err := h.services.Bookings.Archive(c.Request.Context(), actorOf(c), id, c.Query("reason")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Booking archived", nil))
}

// BookingAudit - GET /api/bookings/:id/audit
func (h *Handlers) BookingAudit(c *gin.Context) {
	id, found := pathID(c, "id")
	if !found {
		return
	}

	entries, err := h.services.Bookings.Audit(c.Request.Context(), actorOf(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []models.BookingAudit{}
	}
	ok(c, entries)
}
