package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMailer(t *testing.T) *Mailer {
	t.Helper()
	m, err := New(Config{
		Host:          "smtp.test",
		Port:          2525,
		Username:      "user",
		Password:      "secret",
		From:          "no-reply@gotrip.test",
		StaffEmail:    "staff@gotrip.test",
		PublicBaseURL: "https://gotrip.test/",
	})
	require.NoError(t, err)
	return m
}

func bookingNotification(subject string) models.Notification {
	end := models.NewDate(2026, time.July, 5)
	return models.Notification{
		Subject:       subject,
		To:            []string{"ana@example.com"},
		RecipientName: "Ana",
		Booking: &models.BookingNotice{
			BookingID:   uuid.New(),
			Reference:   "BK-ABCDEFGHJK",
			ServiceName: "Old Town Walk",
			ServiceType: models.KindGuide,
			StartDate:   models.NewDate(2026, time.July, 1),
			EndDate:     &end,
			TotalAmount: 320,
			Currency:    "USD",
			Status:      models.BookingConfirmed,
		},
	}
}

func TestEveryNotificationSubjectHasATemplate(t *testing.T) {
	m := testMailer(t)
	for _, subject := range models.NotificationSubjects {
		_, ok := m.templates[subject]
		assert.True(t, ok, subject)
	}
}

func TestRenderBookingConfirmed(t *testing.T) {
	msg, err := testMailer(t).Render(bookingNotification(models.EventBookingConfirmed))
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com"}, msg.To)
	assert.Equal(t, "Booking BK-ABCDEFGHJK confirmed", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello Ana,")
	assert.Contains(t, msg.HTML, "320.00 USD")
	assert.Contains(t, msg.HTML, "2026-07-05")
	assert.Contains(t, msg.HTML, "https://gotrip.test/bookings/")
}

func TestRenderEscapesUserContent(t *testing.T) {
	n := models.Notification{
		Subject: models.EventContactReceived,
		Contact: &models.ContactMessage{
			Name:    "Eve",
			Email:   "eve@example.com",
			Subject: "Hi\r\nBcc: victim@example.com",
			Message: "<script>alert(1)</script>",
		},
	}

	msg, err := testMailer(t).Render(n)
	require.NoError(t, err)

	assert.Equal(t, []string{"staff@gotrip.test"}, msg.To, "staff inbox when no recipient")
	assert.NotContains(t, msg.Subject, "\n")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestRenderTripPlanQuote(t *testing.T) {
	amount := 1499.5
	msg, err := testMailer(t).Render(models.Notification{
		Subject: models.EventTripPlanUpdated,
		To:      []string{"ana@example.com"},
		TripPlan: &models.TripPlanNotice{
			Title:         "Silk Road",
			Destination:   "Samarkand",
			Status:        models.TripPlanQuoted,
			QuoteAmount:   &amount,
			QuoteCurrency: "USD",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Your trip plan is now quoted", msg.Subject)
	assert.Contains(t, msg.HTML, "1499.50 USD")
}

func TestRenderUnknownSubject(t *testing.T) {
	_, err := testMailer(t).Render(models.Notification{Subject: "nope"})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestDeliverSendsThroughSMTP(t *testing.T) {
	m := testMailer(t)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Deliver(context.Background(), bookingNotification(models.EventBookingCreated)))

	assert.Equal(t, "smtp.test:2525", gotAddr)
	assert.Equal(t, "no-reply@gotrip.test", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	raw := string(gotMsg)
	assert.True(t, strings.HasPrefix(raw, "From: GoTrip <no-reply@gotrip.test>\r\n"))
	assert.Contains(t, raw, "Subject: Booking BK-ABCDEFGHJK received\r\n")
	assert.Contains(t, raw, "X-Mailer: GoTrip-Mailer\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<!DOCTYPE html>")
}

func TestSendErrors(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Send(context.Background(), &Message{To: []string{"a@b.c"}}), ErrNotConfigured)

	m = testMailer(t)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }
	assert.ErrorContains(t, m.Send(context.Background(), &Message{To: []string{"a@b.c"}}), "connection refused")
}
