package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gotrip/internal/auth"
	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/reference"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

// CatalogCache caches unfiltered catalog pages.
type CatalogCache interface {
	GetServicePage(ctx context.Context, q models.ServiceListQuery) (*models.Page[models.Service], bool)
	SetServicePage(ctx context.Context, q models.ServiceListQuery, page models.Page[models.Service])
	InvalidateKind(ctx context.Context, kind models.ServiceKind) error
}

type SessionTracker interface {
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
	ActiveSessions(ctx context.Context, since time.Time) (int64, error)
}

// CatalogIndex is the full-text index over catalog items.
type CatalogIndex interface {
	IndexService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	SearchIDs(ctx context.Context, kind models.ServiceKind, text string) ([]uuid.UUID, error)
}

type ImageStore interface {
	SaveImage(ctx context.Context, folder string, r io.Reader) (string, error)
}

type Notifier interface {
	Notify(n models.Notification) bool
}

// EventPublisher hands domain events to collaborating workflows.
type EventPublisher interface {
	Publish(subject string, data any) error
}

// Deps collects the optional collaborators. Nil fields disable the feature.
type Deps struct {
	Cache      CatalogCache
	Sessions   SessionTracker
	Index      CatalogIndex
	Images     ImageStore
	Notifier   Notifier
	Publisher  EventPublisher
	References *reference.Generator
	Clock      func() time.Time
}

type Services struct {
	Auth       *AuthService
	Catalog    *CatalogService
	Bookings   *BookingService
	TripPlans  *TripPlanService
	Blog       *BlogService
	Newsletter *NewsletterService
	Contact    *ContactService
	Analytics  *AnalyticsService
}

func NewServices(repos *repository.Repositories, tokens *auth.Manager, deps Deps) *Services {
	if deps.References == nil {
		deps.References = reference.New()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	notifier := notifierOrDiscard(deps.Notifier)

	return &Services{
		Auth:       NewAuthService(repos.Users, tokens),
		Catalog:    NewCatalogService(repos.Services, deps.Cache, deps.Index, deps.Images),
		Bookings:   NewBookingService(repos.Bookings, repos.Services, repos.Users, deps.References, notifier, deps.Publisher, deps.Clock),
		TripPlans:  NewTripPlanService(repos.TripPlans, repos.Users, notifier),
		Blog:       NewBlogService(repos.Blog, deps.Clock),
		Newsletter: NewNewsletterService(repos.Newsletter, notifier, deps.Clock),
		Contact:    NewContactService(repos.Contacts, notifier),
		Analytics:  NewAnalyticsService(repos.Analytics, deps.Sessions, deps.Clock),
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(models.Notification) bool { return false }

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return discardNotifier{}
	}
	return n
}

// storeErr translates repository sentinels into the error taxonomy.
func storeErr(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleState):
		return apperrors.Conflict("The record was changed by another request, reload and try again")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Record not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict("A record with the same unique value already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	logger.WithContext(ctx).Error("Storage operation failed", "operation", op, "error", err)
	return apperrors.Dependency(fmt.Sprintf("failed to %s", op), err)
}
