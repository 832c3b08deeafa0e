package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/external"
	"gotrip/internal/mailer"
	"gotrip/internal/metrics"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const (
	handleTimeout = 25 * time.Second
	// maxRedeliveries bounds retries of transient failures before a message is dropped.
	maxRedeliveries = 5
)

// errPermanent marks failures that redelivery cannot fix.
var errPermanent = errors.New("permanent failure")

type MailSink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

type Refunder interface {
	RefundOrder(ctx context.Context, orderID string, amount int64, reason string) (*external.RefundResponse, error)
}

type RefundRecorder interface {
	MarkRefunded(ctx context.Context, bookingID uuid.UUID, reason string) (*models.Booking, error)
}

type Handlers struct {
	mail     MailSink
	payments Refunder
	bookings RefundRecorder
}

func NewHandlers(mail MailSink, payments Refunder, bookings RefundRecorder) *Handlers {
	return &Handlers{
		mail:     mail,
		payments: payments,
		bookings: bookings,
	}
}

// HandleNotification renders and mails one notification.
func (h *Handlers) HandleNotification(m *stan.Msg) {
	h.process(m, "notification", h.deliver)
}

// HandleRefundRequested refunds a cancelled, paid booking at the gateway and
// records the refund on the booking.
func (h *Handlers) HandleRefundRequested(m *stan.Msg) {
	h.process(m, "refund", h.refund)
}

func (h *Handlers) process(m *stan.Msg, kind string, fn func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	err := fn(ctx, m.Data)
	switch {
	case err == nil:
	case errors.Is(err, errPermanent):
		slog.Error("Dropping message", "kind", kind, "subject", m.Subject, "sequence", m.Sequence, "error", err)
	case m.RedeliveryCount >= maxRedeliveries:
		slog.Error("Giving up on message after redeliveries",
			"kind", kind, "subject", m.Subject, "sequence", m.Sequence,
			"redeliveries", m.RedeliveryCount, "error", err)
	default:
		// left unacked for redelivery
		slog.Warn("Message processing failed, awaiting redelivery",
			"kind", kind, "subject", m.Subject, "sequence", m.Sequence, "error", err)
		return
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", m.Subject, "sequence", m.Sequence, "error", err)
	}
}

func (h *Handlers) deliver(ctx context.Context, data []byte) error {
	var n models.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: decode notification: %v", errPermanent, err)
	}

	err := h.mail.Deliver(ctx, n)
	switch {
	case err == nil:
		metrics.Notification("sent")
		return nil
	case errors.Is(err, mailer.ErrNotConfigured):
		slog.Warn("SMTP not configured, notification skipped", "subject", n.Subject)
		metrics.Notification("dropped")
		return nil
	case errors.Is(err, mailer.ErrUnknownTemplate), errors.Is(err, mailer.ErrNoRecipients):
		metrics.Notification("failed")
		return fmt.Errorf("%w: %v", errPermanent, err)
	default:
		metrics.Notification("failed")
		return err
	}
}

func (h *Handlers) refund(ctx context.Context, data []byte) error {
	var event models.RefundRequestedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: decode refund request: %v", errPermanent, err)
	}

	log := slog.With("booking_id", event.BookingID, "reference", event.Reference)
	log.Info("Processing refund request", "amount", event.Amount, "currency", event.Currency)

	resp, err := h.payments.RefundOrder(ctx, event.Reference, external.MinorUnits(event.Amount), event.Reason)
	switch {
	case errors.Is(err, external.ErrPaymentNotFound), errors.Is(err, external.ErrRefundRejected):
		return fmt.Errorf("%w: refund needs manual handling: %v", errPermanent, err)
	case err != nil:
		return err
	}

	reason := "refunded at payment gateway"
	if resp != nil && resp.PaymentID != "" {
		reason += ", payment " + resp.PaymentID
	}
	if _, err := h.bookings.MarkRefunded(ctx, event.BookingID, reason); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) || apperrors.Is(err, apperrors.KindConflict) {
			return fmt.Errorf("%w: %v", errPermanent, err)
		}
		return err
	}

	log.Info("Booking refunded")
	return nil
}
