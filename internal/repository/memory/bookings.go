package memory

import (
	"context"
	"sort"
	"strings"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type Bookings struct{ *store }

func (s *Bookings) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.Reference == b.Reference {
			return repository.ErrDuplicateReference
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = *b
	return nil
}

func (s *Bookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Bookings) GetByReference(_ context.Context, ref string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.Reference == strings.ToUpper(ref) {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *Bookings) List(_ context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Booking
	for _, b := range s.bookings {
		switch {
		case !f.IncludeArchived && b.ArchivedAt != nil,
			f.Status != "" && b.Status != f.Status,
			f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus,
			f.ServiceType != "" && b.ServiceType != f.ServiceType,
			f.From != nil && b.StartDate.Before(f.From.Time),
			f.To != nil && b.StartDate.After(f.To.Time),
			f.UserID != nil && b.UserID != *f.UserID,
			f.Reference != "" && !strings.Contains(b.Reference, f.Reference):
			continue
		}
		matched = append(matched, b)
	}
	newestFirst(matched)
	return paginate(matched, f.PageQuery), len(matched), nil
}

func (s *Bookings) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := []models.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID && b.ArchivedAt == nil {
			bookings = append(bookings, b)
		}
	}
	newestFirst(bookings)
	return bookings, nil
}

func (s *Bookings) DueForCompletion(_ context.Context, day models.Date, limit int) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := []models.Booking{}
	for _, b := range s.bookings {
		if b.Status == models.BookingConfirmed && b.ArchivedAt == nil && b.LastDay().Before(day.Time) {
			due = append(due, b)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].StartDate.Before(due[j].StartDate.Time) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *Bookings) UpdateStatus(_ context.Context, b *models.Booking, from models.BookingStatus, audit *models.BookingAudit) error {
	return s.update(b, audit, func(stored *models.Booking) bool {
		if stored.Status != from {
			return false
		}
		stored.Status = b.Status
		return true
	})
}

func (s *Bookings) UpdatePaymentStatus(_ context.Context, b *models.Booking, from models.PaymentStatus, audit *models.BookingAudit) error {
	return s.update(b, audit, func(stored *models.Booking) bool {
		if stored.PaymentStatus != from {
			return false
		}
		stored.PaymentStatus = b.PaymentStatus
		return true
	})
}

func (s *Bookings) UpdatePricing(_ context.Context, b *models.Booking, oldTotal float64, audit *models.BookingAudit) error {
	return s.update(b, audit, func(stored *models.Booking) bool {
		if stored.TotalAmount != oldTotal {
			return false
		}
		stored.UnitPrice = b.UnitPrice
		stored.TotalAmount = b.TotalAmount
		return true
	})
}

func (s *Bookings) Archive(_ context.Context, b *models.Booking, audit *models.BookingAudit) error {
	return s.update(b, audit, func(stored *models.Booking) bool {
		now := s.now()
		stored.ArchivedAt = &now
		return true
	})
}

// update applies change to the stored booking if it is not archived and the
// guard inside change holds, then records the audit entry.
func (s *Bookings) update(b *models.Booking, audit *models.BookingAudit, change func(*models.Booking) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[b.ID]
	if !ok || stored.ArchivedAt != nil || !change(&stored) {
		return repository.ErrStaleState
	}
	stored.UpdatedAt = s.now()
	s.bookings[b.ID] = stored
	*b = stored

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	audit.CreatedAt = stored.UpdatedAt
	s.audit = append(s.audit, *audit)
	return nil
}

func (s *Bookings) ListAudit(_ context.Context, bookingID uuid.UUID) ([]models.BookingAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []models.BookingAudit{}
	for _, a := range s.audit {
		if a.BookingID == bookingID {
			entries = append(entries, a)
		}
	}
	return entries, nil
}

func newestFirst(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].Reference > bookings[j].Reference
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
