// Package memory holds in-process implementations of the repository stores.
// They keep the same contracts as the Postgres repositories, including
// unique keys and conditional writes, and back service and handler tests.
package memory

import (
	"slices"
	"strings"
	"sync"
	"time"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type store struct {
	mu          sync.RWMutex
	now         func() time.Time
	users       map[uuid.UUID]models.User
	services    map[uuid.UUID]models.Service
	bookings    map[uuid.UUID]models.Booking
	audit       []models.BookingAudit
	tripPlans   map[uuid.UUID]models.TripPlan
	posts       map[uuid.UUID]models.BlogPost
	subscribers map[uuid.UUID]models.NewsletterSubscriber
	contacts    map[uuid.UUID]models.ContactMessage
	events      []models.AnalyticsEvent
}

// Store exposes the individual stores over one shared data set.
type Store struct {
	*store
	Users      *Users
	Services   *Services
	Bookings   *Bookings
	TripPlans  *TripPlans
	Blog       *Blog
	Newsletter *Newsletter
	Contacts   *Contacts
	Analytics  *Analytics
}

func New() *Store {
	s := &store{
		now:         time.Now,
		users:       map[uuid.UUID]models.User{},
		services:    map[uuid.UUID]models.Service{},
		bookings:    map[uuid.UUID]models.Booking{},
		tripPlans:   map[uuid.UUID]models.TripPlan{},
		posts:       map[uuid.UUID]models.BlogPost{},
		subscribers: map[uuid.UUID]models.NewsletterSubscriber{},
		contacts:    map[uuid.UUID]models.ContactMessage{},
	}
	return &Store{
		store:      s,
		Users:      &Users{s},
		Services:   &Services{s},
		Bookings:   &Bookings{s},
		TripPlans:  &TripPlans{s},
		Blog:       &Blog{s},
		Newsletter: &Newsletter{s},
		Contacts:   &Contacts{s},
		Analytics:  &Analytics{s},
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:      s.Users,
		Services:   s.Services,
		Bookings:   s.Bookings,
		TripPlans:  s.TripPlans,
		Blog:       s.Blog,
		Newsletter: s.Newsletter,
		Contacts:   s.Contacts,
		Analytics:  s.Analytics,
	}
}

func paginate[T any](items []T, q models.PageQuery) []T {
	offset := q.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + q.Limit
	if q.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
