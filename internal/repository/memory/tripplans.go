package memory

import (
	"context"
	"sort"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type TripPlans struct{ *store }

func (s *TripPlans) Create(_ context.Context, p *models.TripPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Interests = cloneStrings(p.Interests)
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.tripPlans[p.ID] = *p
	return nil
}

func (s *TripPlans) GetByID(_ context.Context, id uuid.UUID) (*models.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.tripPlans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *TripPlans) List(_ context.Context, q models.TripPlanListQuery) ([]models.TripPlan, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.TripPlan
	for _, p := range s.tripPlans {
		if q.Status == "" || string(p.Status) == q.Status {
			matched = append(matched, p)
		}
	}
	sortPlans(matched)
	return paginate(matched, q.PageQuery), len(matched), nil
}

func (s *TripPlans) ListByUser(_ context.Context, userID uuid.UUID) ([]models.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := []models.TripPlan{}
	for _, p := range s.tripPlans {
		if p.UserID == userID {
			plans = append(plans, p)
		}
	}
	sortPlans(plans)
	return plans, nil
}

func (s *TripPlans) Update(_ context.Context, p *models.TripPlan, expected models.TripPlanStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tripPlans[p.ID]
	if !ok || stored.Status != expected {
		return repository.ErrStaleState
	}
	stored.Status = p.Status
	stored.HandlerID = p.HandlerID
	stored.QuoteAmount = p.QuoteAmount
	stored.QuoteCurrency = p.QuoteCurrency
	stored.UpdatedAt = s.now()
	s.tripPlans[p.ID] = stored
	*p = stored
	return nil
}

func sortPlans(plans []models.TripPlan) {
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
}
