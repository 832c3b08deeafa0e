package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/external"
	"gotrip/internal/mailer"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	err       error
	delivered []models.Notification
}

func (m *fakeMail) Deliver(_ context.Context, n models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, n)
	return nil
}

type refundCall struct {
	orderID string
	amount  int64
}

type fakeGateway struct {
	err   error
	calls []refundCall
}

func (g *fakeGateway) RefundOrder(_ context.Context, orderID string, amount int64, _ string) (*external.RefundResponse, error) {
	g.calls = append(g.calls, refundCall{orderID, amount})
	if g.err != nil {
		return nil, g.err
	}
	return &external.RefundResponse{Success: true, PaymentID: "pay-1", Amount: amount}, nil
}

type fakeRecorder struct {
	err    error
	marked []uuid.UUID
}

func (r *fakeRecorder) MarkRefunded(_ context.Context, id uuid.UUID, _ string) (*models.Booking, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.marked = append(r.marked, id)
	return &models.Booking{ID: id, PaymentStatus: models.PaymentRefunded}, nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()
	n := models.Notification{Subject: models.EventContactReceived, Contact: &models.ContactMessage{Name: "Ana"}}

	mail := &fakeMail{}
	h := NewHandlers(mail, &fakeGateway{}, &fakeRecorder{})
	require.NoError(t, h.deliver(ctx, mustJSON(t, n)))
	require.Len(t, mail.delivered, 1)
	assert.Equal(t, "Ana", mail.delivered[0].Contact.Name)

	err := h.deliver(ctx, []byte("{not json"))
	assert.ErrorIs(t, err, errPermanent)
}

func TestDeliverErrorClassification(t *testing.T) {
	ctx := context.Background()
	payload := mustJSON(t, models.Notification{Subject: models.EventBookingCreated})

	tests := []struct {
		name      string
		err       error
		wantErr   bool
		permanent bool
	}{
		{"smtp off", mailer.ErrNotConfigured, false, false},
		{"unknown template", mailer.ErrUnknownTemplate, true, true},
		{"no recipients", mailer.ErrNoRecipients, true, true},
		{"smtp down", errors.New("dial tcp: connection refused"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&fakeMail{err: tt.err}, &fakeGateway{}, &fakeRecorder{})
			err := h.deliver(ctx, payload)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.permanent, errors.Is(err, errPermanent))
		})
	}
}

func TestRefund(t *testing.T) {
	ctx := context.Background()
	event := models.RefundRequestedEvent{
		BookingID: uuid.New(),
		Reference: "BK-7K2M9Q4XZP",
		Amount:    149.99,
		Currency:  "USD",
	}

	gateway := &fakeGateway{}
	recorder := &fakeRecorder{}
	h := NewHandlers(&fakeMail{}, gateway, recorder)

	require.NoError(t, h.refund(ctx, mustJSON(t, event)))
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, refundCall{"BK-7K2M9Q4XZP", 14999}, gateway.calls[0])
	assert.Equal(t, []uuid.UUID{event.BookingID}, recorder.marked)
}

func TestRefundFailures(t *testing.T) {
	ctx := context.Background()
	payload := mustJSON(t, models.RefundRequestedEvent{BookingID: uuid.New(), Reference: "BK-7K2M9Q4XZP", Amount: 10})

	t.Run("no captured payment", func(t *testing.T) {
		recorder := &fakeRecorder{}
		h := NewHandlers(&fakeMail{}, &fakeGateway{err: external.ErrPaymentNotFound}, recorder)
		assert.ErrorIs(t, h.refund(ctx, payload), errPermanent)
		assert.Empty(t, recorder.marked)
	})

	t.Run("gateway unavailable is retried", func(t *testing.T) {
		h := NewHandlers(&fakeMail{}, &fakeGateway{err: errors.New("unexpected status code: 502")}, &fakeRecorder{})
		err := h.refund(ctx, payload)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errPermanent)
	})

	t.Run("booking no longer refundable", func(t *testing.T) {
		h := NewHandlers(&fakeMail{}, &fakeGateway{}, &fakeRecorder{err: apperrors.Conflict("Cannot move payment from unpaid to refunded")})
		assert.ErrorIs(t, h.refund(ctx, payload), errPermanent)
	})

	t.Run("storage down is retried", func(t *testing.T) {
		h := NewHandlers(&fakeMail{}, &fakeGateway{}, &fakeRecorder{err: apperrors.Dependency("failed to update booking", errors.New("pq: timeout"))})
		err := h.refund(ctx, payload)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errPermanent)
	})
}
