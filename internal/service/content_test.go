package service

import (
	"context"
	"testing"
	"time"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.Blog.Create(ctx, f.staff, &models.BlogPostRequest{Title: "Ten days in Kyrgyzstan", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, models.BlogDraft, draft.Status)
	assert.Equal(t, "ten-days-in-kyrgyzstan", draft.Slug)
	assert.Nil(t, draft.PublishedAt)

	_, err = f.svc.Blog.GetBySlug(ctx, draft.Slug)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "drafts are hidden")

	published, err := f.svc.Blog.Update(ctx, draft.ID, &models.BlogPostRequest{
		Title: "Ten days in Kyrgyzstan", Content: "...", Status: models.BlogPublished, Tags: []string{"asia"},
	})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, draft.Slug, published.Slug)

	page, err := f.svc.Blog.List(ctx, models.BlogListQuery{Tag: "asia"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	twin, err := f.svc.Blog.Create(ctx, f.staff, &models.BlogPostRequest{Title: "Ten Days in Kyrgyzstan!", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, "ten-days-in-kyrgyzstan-2", twin.Slug)

	require.NoError(t, f.svc.Blog.Delete(ctx, draft.ID))
	page, err = f.svc.Blog.List(ctx, models.BlogListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	assert.True(t, apperrors.Is(f.svc.Blog.Delete(ctx, uuid.New()), apperrors.KindNotFound))
}

func TestNewsletterSubscribeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Newsletter.Subscribe(ctx, &models.SubscribeRequest{Email: "Reader@Example.com", Name: "Reader"})
	require.NoError(t, err)
	second, err := f.svc.Newsletter.Subscribe(ctx, &models.SubscribeRequest{Email: "reader@example.com"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "reader@example.com", first.Email)
	assert.Equal(t, []string{models.EventNewsletterWelcome}, f.notifier.subjects())

	require.NoError(t, f.svc.Newsletter.Unsubscribe(ctx, &models.UnsubscribeRequest{Email: "reader@example.com"}))
	require.NoError(t, f.svc.Newsletter.Unsubscribe(ctx, &models.UnsubscribeRequest{Email: "reader@example.com"}))

	again, err := f.svc.Newsletter.Subscribe(ctx, &models.SubscribeRequest{Email: "reader@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, models.Subscribed, again.Status)
	assert.Nil(t, again.UnsubscribedAt)
	assert.Len(t, f.notifier.subjects(), 2)

	err = f.svc.Newsletter.Unsubscribe(ctx, &models.UnsubscribeRequest{Email: "nobody@example.com"})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	page, err := f.svc.Newsletter.List(ctx, models.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestContactSubmitAndHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Contact.Submit(ctx, &models.ContactRequest{
		Name: "Ana", Email: "ana@example.com", Subject: "Group tour", Message: "Do you run tours for 12 people?",
	})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.EventContactReceived, f.notifier.sent[0].Subject)
	assert.Equal(t, msg.ID, f.notifier.sent[0].Contact.ID)

	handled, err := f.svc.Contact.MarkHandled(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, handled.Handled)

	no := false
	page, err := f.svc.Contact.List(ctx, models.ContactListQuery{Handled: &no})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = f.svc.Contact.MarkHandled(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

type fakeSessions struct {
	touched map[string]time.Time
}

func (s *fakeSessions) TouchSession(_ context.Context, id string, at time.Time) error {
	if s.touched == nil {
		s.touched = map[string]time.Time{}
	}
	s.touched[id] = at
	return nil
}

func (s *fakeSessions) ActiveSessions(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, at := range s.touched {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

func TestAnalyticsTrackAndRealtime(t *testing.T) {
	sessions := &fakeSessions{}
	f := newFixture(t, func(d *Deps) { d.Sessions = sessions })
	ctx := context.Background()

	require.NoError(t, f.svc.Analytics.Track(ctx, nil, &models.TrackEventRequest{SessionID: "s1", Path: "/guides", Type: models.EventPageView}))
	require.NoError(t, f.svc.Analytics.Track(ctx, &f.customer.ID, &models.TrackEventRequest{SessionID: "s2", Path: "/", Type: models.EventPageView}))
	err := f.svc.Analytics.Track(ctx, nil, &models.TrackEventRequest{SessionID: "s3", Path: "guides", Type: "click"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	createBooking(t, f)

	rt, err := f.svc.Analytics.Realtime(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rt.ActiveSessions)
	assert.Equal(t, 2, rt.PageViewsLastHour)
	assert.Equal(t, 1, rt.BookingsToday)
	assert.Equal(t, testNow, rt.GeneratedAt)
}

func TestAnalyticsDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)
	_, err := f.svc.Bookings.UpdatePaymentStatus(ctx, f.staff, b.ID, &models.UpdatePaymentStatusRequest{PaymentStatus: models.PaymentPaid})
	require.NoError(t, err)
	submitPlan(t, f)

	d, err := f.svc.Analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Totals.Users)
	assert.Equal(t, 1, d.Totals.Bookings)
	assert.Equal(t, 300.0, d.Revenue)
	assert.Equal(t, 1, d.BookingsByStatus["pending"])
	assert.Equal(t, 1, d.TripPlansByStatus["pending"])
	assert.Len(t, d.MonthlyRevenue, 6)
	require.Len(t, d.TopServices, 1)
	assert.Equal(t, b.ServiceID, d.TopServices[0].ServiceID)
}
