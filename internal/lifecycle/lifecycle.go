// Package lifecycle holds the status state machines of bookings, payments and
// trip plans together with the rules on who may drive them.
package lifecycle

import (
	"fmt"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/google/uuid"
)

var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled},
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentUnpaid:  {models.PaymentPending, models.PaymentPaid},
	models.PaymentPending: {models.PaymentPaid},
	models.PaymentPaid:    {models.PaymentRefunded},
}

var tripPlanTransitions = map[models.TripPlanStatus][]models.TripPlanStatus{
	models.TripPlanPending:   {models.TripPlanReviewing, models.TripPlanArchived, models.TripPlanCancelled},
	models.TripPlanReviewing: {models.TripPlanQuoted, models.TripPlanArchived, models.TripPlanCancelled},
	models.TripPlanQuoted:    {models.TripPlanConfirmed, models.TripPlanArchived, models.TripPlanCancelled},
	models.TripPlanConfirmed: {models.TripPlanArchived, models.TripPlanCancelled},
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func CanTransitionBooking(from, to models.BookingStatus) bool {
	return contains(bookingTransitions[from], to)
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	return contains(paymentTransitions[from], to)
}

func CanTransitionTripPlan(from, to models.TripPlanStatus) bool {
	return contains(tripPlanTransitions[from], to)
}

func IsTerminalBooking(s models.BookingStatus) bool {
	return len(bookingTransitions[s]) == 0
}

func IsTerminalTripPlan(s models.TripPlanStatus) bool {
	return len(tripPlanTransitions[s]) == 0
}

// BookingTransition returns a Conflict error for any move outside the table.
func BookingTransition(from, to models.BookingStatus) error {
	if !to.Valid() {
		return apperrors.Validation(apperrors.Field("status", fmt.Sprintf("unknown booking status %q", to)))
	}
	if !CanTransitionBooking(from, to) {
		return apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", from, to))
	}
	return nil
}

func PaymentTransition(from, to models.PaymentStatus) error {
	if !to.Valid() {
		return apperrors.Validation(apperrors.Field("paymentStatus", fmt.Sprintf("unknown payment status %q", to)))
	}
	if !CanTransitionPayment(from, to) {
		return apperrors.Conflict(fmt.Sprintf("Cannot change payment status from %s to %s", from, to))
	}
	return nil
}

func TripPlanTransition(from, to models.TripPlanStatus) error {
	if !to.Valid() {
		return apperrors.Validation(apperrors.Field("status", fmt.Sprintf("unknown trip plan status %q", to)))
	}
	if !CanTransitionTripPlan(from, to) {
		return apperrors.Conflict(fmt.Sprintf("Cannot change trip plan status from %s to %s", from, to))
	}
	return nil
}

// AuthorizeBookingTransition lets staff drive any transition and owners only cancel.
func AuthorizeBookingTransition(actor models.Actor, ownerID uuid.UUID, to models.BookingStatus) error {
	if actor.IsStaff() {
		return nil
	}
	if !actor.Owns(ownerID) {
		return apperrors.Forbidden("You can only manage your own bookings")
	}
	if to != models.BookingCancelled {
		return apperrors.Forbidden("Only staff can set booking status to " + string(to))
	}
	return nil
}

func AuthorizeTripPlanTransition(actor models.Actor, ownerID uuid.UUID, to models.TripPlanStatus) error {
	if actor.IsStaff() {
		return nil
	}
	if !actor.Owns(ownerID) {
		return apperrors.Forbidden("You can only manage your own trip plans")
	}
	if to != models.TripPlanCancelled {
		return apperrors.Forbidden("Only staff can set trip plan status to " + string(to))
	}
	return nil
}

// CanView reports whether actor may read a record owned by ownerID.
func CanView(actor models.Actor, ownerID uuid.UUID) bool {
	return actor.IsStaff() || actor.Owns(ownerID)
}

// NeedsRefund reports whether cancelling a booking in this payment state must
// hand off to the refund workflow.
func NeedsRefund(to models.BookingStatus, payment models.PaymentStatus) bool {
	return to == models.BookingCancelled && payment == models.PaymentPaid
}
