package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Service is a bookable catalog item. Destinations, accommodations, guides,
// translators and packages share one record shape and differ by Kind.
type Service struct {
	ID          uuid.UUID   `json:"id"`
	Kind        ServiceKind `json:"kind"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	City        string      `json:"city,omitempty"`
	Country     string      `json:"country,omitempty"`
	Price       float64     `json:"price"`
	PriceUnit   PriceUnit   `json:"priceUnit"`
	Currency    string      `json:"currency"`
	Languages   []string    `json:"languages,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
	Rating      float64     `json:"rating"`
	Images      []string    `json:"images,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Booking snapshots the service name, kind and unit price at creation time.
// TotalAmount is only rewritten by an explicit recalculation.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	Reference     string        `json:"bookingReference"`
	UserID        uuid.UUID     `json:"userId"`
	ServiceID     uuid.UUID     `json:"serviceId"`
	ServiceType   ServiceKind   `json:"serviceType"`
	ServiceName   string        `json:"serviceName"`
	StartDate     Date          `json:"startDate"`
	EndDate       *Date         `json:"endDate,omitempty"`
	DurationDays  int           `json:"durationDays"`
	Travelers     int           `json:"travelers"`
	Units         int           `json:"units"`
	PriceUnit     PriceUnit     `json:"priceUnit"`
	UnitPrice     float64       `json:"unitPrice"`
	TotalAmount   float64       `json:"totalAmount"`
	Currency      string        `json:"currency"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Notes         string        `json:"notes,omitempty"`
	ContactEmail  string        `json:"contactEmail,omitempty"`
	ArchivedAt    *time.Time    `json:"archivedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// LastDay returns the final day of the stay, derived from the start date when
// no end date was given.
func (b *Booking) LastDay() Date {
	if b.EndDate != nil {
		return *b.EndDate
	}
	return b.StartDate.AddDays(b.DurationDays)
}

// BookingAudit records a single privileged change to a booking.
// ActorID is uuid.Nil for changes made by background workers.
type BookingAudit struct {
	ID        uuid.UUID   `json:"id"`
	BookingID uuid.UUID   `json:"bookingId"`
	ActorID   uuid.UUID   `json:"actorId"`
	Action    AuditAction `json:"action"`
	FromValue string      `json:"from,omitempty"`
	ToValue   string      `json:"to,omitempty"`
	OldTotal  *float64    `json:"oldTotal,omitempty"`
	NewTotal  *float64    `json:"newTotal,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type TripPlan struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"userId"`
	Title         string         `json:"title"`
	Destination   string         `json:"destination"`
	StartDate     *Date          `json:"startDate,omitempty"`
	EndDate       *Date          `json:"endDate,omitempty"`
	Adults        int            `json:"adults"`
	Children      int            `json:"children"`
	Budget        BudgetTier     `json:"budget"`
	Interests     []string       `json:"interests"`
	Notes         string         `json:"notes,omitempty"`
	Status        TripPlanStatus `json:"status"`
	HandlerID     *uuid.UUID     `json:"handlerId,omitempty"`
	QuoteAmount   *float64       `json:"quoteAmount,omitempty"`
	QuoteCurrency string         `json:"quoteCurrency,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type BlogPost struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	CoverImage  string     `json:"coverImage,omitempty"`
	AuthorID    uuid.UUID  `json:"authorId"`
	Status      BlogStatus `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type NewsletterSubscriber struct {
	ID             uuid.UUID          `json:"id"`
	Email          string             `json:"email"`
	Name           string             `json:"name,omitempty"`
	Status         SubscriptionStatus `json:"status"`
	Token          string             `json:"-"`
	SubscribedAt   time.Time          `json:"subscribedAt"`
	UnsubscribedAt *time.Time         `json:"unsubscribedAt,omitempty"`
}

type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Handled   bool      `json:"handled"`
	CreatedAt time.Time `json:"createdAt"`
}

type AnalyticsEvent struct {
	ID        uuid.UUID          `json:"id"`
	SessionID string             `json:"sessionId"`
	Path      string             `json:"path"`
	Type      AnalyticsEventType `json:"type"`
	UserID    *uuid.UUID         `json:"userId,omitempty"`
	Referrer  string             `json:"referrer,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
