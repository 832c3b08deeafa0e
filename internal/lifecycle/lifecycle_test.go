package lifecycle

import (
	"testing"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var bookingStatuses = []models.BookingStatus{
	models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled,
}

func TestBookingTransitionTable(t *testing.T) {
	allowed := map[[2]models.BookingStatus]bool{
		{models.BookingPending, models.BookingConfirmed}:   true,
		{models.BookingPending, models.BookingCancelled}:   true,
		{models.BookingConfirmed, models.BookingCompleted}: true,
		{models.BookingConfirmed, models.BookingCancelled}: true,
	}

	for _, from := range bookingStatuses {
		for _, to := range bookingStatuses {
			err := BookingTransition(from, to)
			if allowed[[2]models.BookingStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.KindConflict), "%s -> %s", from, to)
			}
		}
	}
}

func TestTerminalBookingStates(t *testing.T) {
	assert.True(t, IsTerminalBooking(models.BookingCompleted))
	assert.True(t, IsTerminalBooking(models.BookingCancelled))
	assert.False(t, IsTerminalBooking(models.BookingPending))
	assert.False(t, IsTerminalBooking(models.BookingConfirmed))
}

func TestBookingTransitionUnknownStatus(t *testing.T) {
	err := BookingTransition(models.BookingPending, "shipped")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestPaymentTransitionTable(t *testing.T) {
	statuses := []models.PaymentStatus{models.PaymentUnpaid, models.PaymentPending, models.PaymentPaid, models.PaymentRefunded}
	allowed := map[[2]models.PaymentStatus]bool{
		{models.PaymentUnpaid, models.PaymentPaid}:    true,
		{models.PaymentUnpaid, models.PaymentPending}: true,
		{models.PaymentPending, models.PaymentPaid}:   true,
		{models.PaymentPaid, models.PaymentRefunded}:  true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := PaymentTransition(from, to)
			if allowed[[2]models.PaymentStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.KindConflict), "%s -> %s", from, to)
			}
		}
	}
}

func TestTripPlanTransitions(t *testing.T) {
	assert.NoError(t, TripPlanTransition(models.TripPlanPending, models.TripPlanReviewing))
	assert.NoError(t, TripPlanTransition(models.TripPlanReviewing, models.TripPlanQuoted))
	assert.NoError(t, TripPlanTransition(models.TripPlanQuoted, models.TripPlanConfirmed))
	assert.NoError(t, TripPlanTransition(models.TripPlanReviewing, models.TripPlanCancelled))
	assert.NoError(t, TripPlanTransition(models.TripPlanQuoted, models.TripPlanArchived))
	assert.NoError(t, TripPlanTransition(models.TripPlanConfirmed, models.TripPlanArchived))
	assert.NoError(t, TripPlanTransition(models.TripPlanConfirmed, models.TripPlanCancelled))
	assert.False(t, IsTerminalTripPlan(models.TripPlanConfirmed))

	assert.Error(t, TripPlanTransition(models.TripPlanPending, models.TripPlanQuoted))
	assert.Error(t, TripPlanTransition(models.TripPlanCancelled, models.TripPlanPending))
	assert.Error(t, TripPlanTransition(models.TripPlanArchived, models.TripPlanCancelled))
	assert.True(t, IsTerminalTripPlan(models.TripPlanCancelled))
	assert.True(t, IsTerminalTripPlan(models.TripPlanArchived))
}

func TestAuthorizeBookingTransition(t *testing.T) {
	owner := uuid.New()
	ownerActor := models.Actor{ID: owner, Role: models.RoleUser}
	stranger := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	staff := models.Actor{ID: uuid.New(), Role: models.RoleStaff}

	assert.NoError(t, AuthorizeBookingTransition(ownerActor, owner, models.BookingCancelled))

	err := AuthorizeBookingTransition(ownerActor, owner, models.BookingConfirmed)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	err = AuthorizeBookingTransition(stranger, owner, models.BookingCancelled)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	for _, to := range bookingStatuses {
		assert.NoError(t, AuthorizeBookingTransition(staff, owner, to))
	}
	assert.NoError(t, AuthorizeBookingTransition(models.SystemActor, owner, models.BookingCompleted))
}

func TestAuthorizeTripPlanTransition(t *testing.T) {
	owner := uuid.New()
	ownerActor := models.Actor{ID: owner, Role: models.RoleUser}

	assert.NoError(t, AuthorizeTripPlanTransition(ownerActor, owner, models.TripPlanCancelled))
	assert.Error(t, AuthorizeTripPlanTransition(ownerActor, owner, models.TripPlanReviewing))
	assert.NoError(t, AuthorizeTripPlanTransition(models.Actor{ID: uuid.New(), Role: models.RoleAdmin}, owner, models.TripPlanQuoted))
}

func TestNeedsRefund(t *testing.T) {
	assert.True(t, NeedsRefund(models.BookingCancelled, models.PaymentPaid))
	assert.False(t, NeedsRefund(models.BookingCancelled, models.PaymentUnpaid))
	assert.False(t, NeedsRefund(models.BookingConfirmed, models.PaymentPaid))
}

func TestCanView(t *testing.T) {
	owner := uuid.New()
	assert.True(t, CanView(models.Actor{ID: owner, Role: models.RoleUser}, owner))
	assert.True(t, CanView(models.Actor{ID: uuid.New(), Role: models.RoleStaff}, owner))
	assert.False(t, CanView(models.Actor{ID: uuid.New(), Role: models.RoleUser}, owner))
	assert.False(t, CanView(models.Actor{}, uuid.Nil))
}
