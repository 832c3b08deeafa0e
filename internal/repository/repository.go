package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gotrip/internal/database"
	"gotrip/internal/models"
	"gotrip/internal/reference"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrDuplicateReference wraps reference.ErrTaken so the generator retries.
	ErrDuplicateReference = fmt.Errorf("booking reference already exists: %w", reference.ErrTaken)
	// ErrStaleState is returned by conditional writes when the row no longer
	// holds the expected state.
	ErrStaleState = errors.New("record was changed concurrently")
)

// Get methods return (nil, nil) when the row does not exist.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

type ServiceStore interface {
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	GetBySlug(ctx context.Context, kind models.ServiceKind, slug string) (*models.Service, error)
	SlugExists(ctx context.Context, kind models.ServiceKind, slug string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, q models.ServiceListQuery) ([]models.Service, int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type BookingStore interface {
	// Create fails with ErrDuplicateReference when the reference is taken.
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByReference(ctx context.Context, ref string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	// UpdateStatus writes booking.Status only if the stored status equals from,
	// together with the audit entry. Returns ErrStaleState otherwise.
	UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus, audit *models.BookingAudit) error
	UpdatePaymentStatus(ctx context.Context, booking *models.Booking, from models.PaymentStatus, audit *models.BookingAudit) error
	// UpdatePricing writes unit price and total if the stored total equals oldTotal.
	UpdatePricing(ctx context.Context, booking *models.Booking, oldTotal float64, audit *models.BookingAudit) error
	Archive(ctx context.Context, booking *models.Booking, audit *models.BookingAudit) error
	ListAudit(ctx context.Context, bookingID uuid.UUID) ([]models.BookingAudit, error)
	// DueForCompletion lists confirmed, unarchived bookings whose stay ended before day.
	DueForCompletion(ctx context.Context, day models.Date, limit int) ([]models.Booking, error)
}

type TripPlanStore interface {
	Create(ctx context.Context, plan *models.TripPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TripPlan, error)
	List(ctx context.Context, q models.TripPlanListQuery) ([]models.TripPlan, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error)
	// Update writes status, handler and quote if the stored status equals expected.
	Update(ctx context.Context, plan *models.TripPlan, expected models.TripPlanStatus) error
}

type BlogStore interface {
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, q models.BlogListQuery) ([]models.BlogPost, int, error)
}

type NewsletterStore interface {
	Create(ctx context.Context, sub *models.NewsletterSubscriber) error
	Update(ctx context.Context, sub *models.NewsletterSubscriber) error
	GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	List(ctx context.Context, q models.PageQuery) ([]models.NewsletterSubscriber, int, error)
}

type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, q models.ContactListQuery) ([]models.ContactMessage, int, error)
	MarkHandled(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
}

type AnalyticsStore interface {
	Record(ctx context.Context, event *models.AnalyticsEvent) error
	Dashboard(ctx context.Context, now time.Time) (*models.Dashboard, error)
	CountBookingsSince(ctx context.Context, since time.Time) (int, error)
	CountEventsSince(ctx context.Context, eventType models.AnalyticsEventType, since time.Time) (int, error)
}

type Repositories struct {
	Users      UserStore
	Services   ServiceStore
	Bookings   BookingStore
	TripPlans  TripPlanStore
	Blog       BlogStore
	Newsletter NewsletterStore
	Contacts   ContactStore
	Analytics  AnalyticsStore
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Services:   NewServiceRepository(db),
		Bookings:   NewBookingRepository(db),
		TripPlans:  NewTripPlanRepository(db),
		Blog:       NewBlogRepository(db),
		Newsletter: NewNewsletterRepository(db),
		Contacts:   NewContactRepository(db),
		Analytics:  NewAnalyticsRepository(db),
	}
}
