package models

import (
	"time"

	"github.com/google/uuid"
)

// NATS subjects
const (
	EventBookingCreated         = "booking.created"
	EventBookingConfirmed       = "booking.confirmed"
	EventBookingCompleted       = "booking.completed"
	EventBookingCancelled       = "booking.cancelled"
	EventBookingRefundRequested = "booking.refund_requested"
	EventTripPlanReceived       = "tripplan.received"
	EventTripPlanUpdated        = "tripplan.updated"
	EventContactReceived        = "contact.received"
	EventNewsletterWelcome      = "newsletter.welcome"
)

// NotificationSubjects lists every subject that carries a Notification payload.
var NotificationSubjects = []string{
	EventBookingCreated,
	EventBookingConfirmed,
	EventBookingCompleted,
	EventBookingCancelled,
	EventTripPlanReceived,
	EventTripPlanUpdated,
	EventContactReceived,
	EventNewsletterWelcome,
}

// BookingStatusSubject maps a booking status to the subject announcing it.
// Returns "" for statuses that do not notify.
func BookingStatusSubject(status BookingStatus) string {
	switch status {
	case BookingConfirmed:
		return EventBookingConfirmed
	case BookingCompleted:
		return EventBookingCompleted
	case BookingCancelled:
		return EventBookingCancelled
	}
	return ""
}

// Notification is an outbound message handed to the notification dispatcher.
// Subject selects both the NATS subject and the email template.
type Notification struct {
	Subject       string          `json:"subject"`
	To            []string        `json:"to"`
	RecipientName string          `json:"recipientName,omitempty"`
	Booking       *BookingNotice  `json:"booking,omitempty"`
	TripPlan      *TripPlanNotice `json:"tripPlan,omitempty"`
	Contact       *ContactMessage `json:"contact,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

type BookingNotice struct {
	BookingID   uuid.UUID     `json:"bookingId"`
	Reference   string        `json:"reference"`
	ServiceName string        `json:"serviceName"`
	ServiceType ServiceKind   `json:"serviceType"`
	StartDate   Date          `json:"startDate"`
	EndDate     *Date         `json:"endDate,omitempty"`
	TotalAmount float64       `json:"totalAmount"`
	Currency    string        `json:"currency"`
	Status      BookingStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
}

func NewBookingNotice(b *Booking, reason string) *BookingNotice {
	return &BookingNotice{
		BookingID:   b.ID,
		Reference:   b.Reference,
		ServiceName: b.ServiceName,
		ServiceType: b.ServiceType,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		Status:      b.Status,
		Reason:      reason,
	}
}

type TripPlanNotice struct {
	PlanID        uuid.UUID      `json:"planId"`
	Title         string         `json:"title"`
	Destination   string         `json:"destination"`
	Status        TripPlanStatus `json:"status"`
	QuoteAmount   *float64       `json:"quoteAmount,omitempty"`
	QuoteCurrency string         `json:"quoteCurrency,omitempty"`
}

func NewTripPlanNotice(p *TripPlan) *TripPlanNotice {
	return &TripPlanNotice{
		PlanID:        p.ID,
		Title:         p.Title,
		Destination:   p.Destination,
		Status:        p.Status,
		QuoteAmount:   p.QuoteAmount,
		QuoteCurrency: p.QuoteCurrency,
	}
}

// RefundRequestedEvent asks the payment workflow to refund a cancelled, paid booking
type RefundRequestedEvent struct {
	BookingID   uuid.UUID `json:"bookingId"`
	Reference   string    `json:"reference"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	RequestedBy uuid.UUID `json:"requestedBy"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
