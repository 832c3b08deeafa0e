package memory

import (
	"context"
	"testing"
	"time"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(ref string, status models.BookingStatus) *models.Booking {
	return &models.Booking{
		Reference:     ref,
		UserID:        uuid.New(),
		ServiceID:     uuid.New(),
		ServiceType:   models.KindAccommodation,
		StartDate:     models.NewDate(2025, time.June, 1),
		DurationDays:  3,
		Units:         3,
		TotalAmount:   300,
		Status:        status,
		PaymentStatus: models.PaymentUnpaid,
	}
}

func TestBookingReferenceUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Bookings.Create(ctx, newBooking("BK-AAAAAAAAAA", models.BookingPending)))
	err := s.Bookings.Create(ctx, newBooking("BK-AAAAAAAAAA", models.BookingPending))
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestBookingConditionalStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := newBooking("BK-BBBBBBBBBB", models.BookingPending)
	require.NoError(t, s.Bookings.Create(ctx, b))

	first := *b
	first.Status = models.BookingConfirmed
	require.NoError(t, s.Bookings.UpdateStatus(ctx, &first, models.BookingPending,
		&models.BookingAudit{BookingID: b.ID, Action: models.AuditStatus}))

	second := *b
	second.Status = models.BookingCancelled
	err := s.Bookings.UpdateStatus(ctx, &second, models.BookingPending,
		&models.BookingAudit{BookingID: b.ID, Action: models.AuditStatus})
	assert.ErrorIs(t, err, repository.ErrStaleState)

	stored, _ := s.Bookings.GetByID(ctx, b.ID)
	assert.Equal(t, models.BookingConfirmed, stored.Status)

	audit, _ := s.Bookings.ListAudit(ctx, b.ID)
	assert.Len(t, audit, 1)
}

func TestArchivedBookingsHiddenFromLists(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := newBooking("BK-CCCCCCCCCC", models.BookingPending)
	require.NoError(t, s.Bookings.Create(ctx, b))
	require.NoError(t, s.Bookings.Archive(ctx, b, &models.BookingAudit{BookingID: b.ID, Action: models.AuditArchive}))

	q := models.BookingFilter{}
	q.Normalize()
	items, total, err := s.Bookings.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	q.IncludeArchived = true
	_, total, _ = s.Bookings.List(ctx, q)
	assert.Equal(t, 1, total)

	// the reference stays reserved
	err = s.Bookings.Create(ctx, newBooking("BK-CCCCCCCCCC", models.BookingPending))
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestDueForCompletion(t *testing.T) {
	s := New()
	ctx := context.Background()

	ended := newBooking("BK-DDDDDDDDDD", models.BookingConfirmed)
	running := newBooking("BK-EEEEEEEEEE", models.BookingConfirmed)
	running.StartDate = models.NewDate(2025, time.June, 9)
	pending := newBooking("BK-FFFFFFFFFF", models.BookingPending)
	for _, b := range []*models.Booking{ended, running, pending} {
		require.NoError(t, s.Bookings.Create(ctx, b))
	}

	due, err := s.Bookings.DueForCompletion(ctx, models.NewDate(2025, time.June, 10), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ended.ID, due[0].ID)
}

func TestServiceListFiltersAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, price := range []float64{50, 120, 80} {
		svc := &models.Service{
			Kind: models.KindGuide, Name: []string{"Anna", "Bek", "Cem"}[i], Slug: []string{"anna", "bek", "cem"}[i],
			Price: price, PriceUnit: models.PerDay, Languages: []string{"en"}, IsActive: true,
		}
		require.NoError(t, s.Services.Create(ctx, svc))
	}

	minPrice := 60.0
	q := models.ServiceListQuery{Kind: models.KindGuide, MinPrice: &minPrice, Sort: "price", Order: "asc"}
	q.Limit = 1
	q.Page = 1
	items, total, err := s.Services.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Cem", items[0].Name)
}
