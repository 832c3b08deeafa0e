package memory

import (
	"context"
	"sort"
	"time"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type Analytics struct{ *store }

func (s *Analytics) Record(_ context.Context, e *models.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = s.now()
	s.events = append(s.events, *e)
	return nil
}

func countsRevenue(b models.Booking) bool {
	return b.ArchivedAt == nil && b.PaymentStatus == models.PaymentPaid && b.Status != models.BookingCancelled
}

func (s *Analytics) Dashboard(_ context.Context, now time.Time) (*models.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := &models.Dashboard{
		BookingsByStatus:      map[string]int{},
		BookingsByServiceType: map[string]int{},
		TripPlansByStatus:     map[string]int{},
	}
	d.Totals.Users = len(s.users)
	d.Totals.TripPlans = len(s.tripPlans)
	for _, svc := range s.services {
		if svc.IsActive {
			d.Totals.ActiveServices++
		}
	}
	for _, p := range s.tripPlans {
		d.TripPlansByStatus[string(p.Status)]++
	}

	months := repository.RevenueMonths(now, repository.MonthlyRevenueWindow)
	monthly := map[string]*models.MonthlyRevenue{}
	for _, m := range months {
		monthly[m] = &models.MonthlyRevenue{Month: m}
	}
	top := map[uuid.UUID]*models.TopService{}

	for _, b := range s.bookings {
		if b.ArchivedAt != nil {
			continue
		}
		d.Totals.Bookings++
		d.BookingsByStatus[string(b.Status)]++
		d.BookingsByServiceType[string(b.ServiceType)]++

		t, ok := top[b.ServiceID]
		if !ok {
			t = &models.TopService{ServiceID: b.ServiceID, ServiceName: b.ServiceName, ServiceType: b.ServiceType}
			top[b.ServiceID] = t
		}
		t.Bookings++

		if countsRevenue(b) {
			d.Revenue += b.TotalAmount
			t.Revenue += b.TotalAmount
			if m, ok := monthly[b.CreatedAt.UTC().Format("2006-01")]; ok {
				m.Revenue += b.TotalAmount
				m.Count++
			}
		}
	}

	for _, m := range months {
		d.MonthlyRevenue = append(d.MonthlyRevenue, *monthly[m])
	}

	d.TopServices = []models.TopService{}
	for _, t := range top {
		d.TopServices = append(d.TopServices, *t)
	}
	sort.Slice(d.TopServices, func(i, j int) bool {
		a, b := d.TopServices[i], d.TopServices[j]
		if a.Bookings != b.Bookings {
			return a.Bookings > b.Bookings
		}
		return a.Revenue > b.Revenue
	})
	if len(d.TopServices) > 5 {
		d.TopServices = d.TopServices[:5]
	}

	return d, nil
}

func (s *Analytics) CountBookingsSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, b := range s.bookings {
		if !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Analytics) CountEventsSince(_ context.Context, eventType models.AnalyticsEventType, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.events {
		if e.Type == eventType && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
