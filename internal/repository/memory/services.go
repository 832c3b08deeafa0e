package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type Services struct{ *store }

func (s *Services) Create(_ context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(svc.Kind, svc.Slug, uuid.Nil) {
		return repository.ErrDuplicate
	}
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.Languages = cloneStrings(svc.Languages)
	svc.Images = cloneStrings(svc.Images)
	svc.CreatedAt = s.now()
	svc.UpdatedAt = svc.CreatedAt
	s.services[svc.ID] = *svc
	return nil
}

func (s *Services) Update(_ context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.services[svc.ID]
	if !ok || !current.IsActive {
		return repository.ErrNotFound
	}
	if s.slugTaken(current.Kind, svc.Slug, svc.ID) {
		return repository.ErrDuplicate
	}
	svc.Kind = current.Kind
	svc.IsActive = current.IsActive
	svc.CreatedAt = current.CreatedAt
	svc.UpdatedAt = s.now()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Services) slugTaken(kind models.ServiceKind, slug string, exclude uuid.UUID) bool {
	for _, svc := range s.services {
		if svc.Kind == kind && svc.Slug == slug && svc.ID != exclude {
			return true
		}
	}
	return false
}

func (s *Services) GetByID(_ context.Context, id uuid.UUID) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (s *Services) GetBySlug(_ context.Context, kind models.ServiceKind, slug string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, svc := range s.services {
		if svc.Kind == kind && svc.Slug == slug {
			return &svc, nil
		}
	}
	return nil, nil
}

func (s *Services) SlugExists(_ context.Context, kind models.ServiceKind, slug string, exclude uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTaken(kind, slug, exclude), nil
}

func (s *Services) List(_ context.Context, q models.ServiceListQuery) ([]models.Service, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Service
	for _, svc := range s.services {
		if !svc.IsActive || (q.Kind != "" && svc.Kind != q.Kind) {
			continue
		}
		if q.IDs != nil {
			if !slices.Contains(q.IDs, svc.ID) {
				continue
			}
		} else if q.Search != "" && !containsFold(svc.Name, q.Search) &&
			!containsFold(svc.Summary, q.Search) && !containsFold(svc.City, q.Search) {
			continue
		}
		if q.City != "" && !strings.EqualFold(svc.City, q.City) {
			continue
		}
		if q.Country != "" && !strings.EqualFold(svc.Country, q.Country) {
			continue
		}
		if q.Language != "" && !slices.Contains(svc.Languages, q.Language) {
			continue
		}
		if q.MinPrice != nil && svc.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && svc.Price > *q.MaxPrice {
			continue
		}
		matched = append(matched, svc)
	}

	less := func(a, b models.Service) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch q.Sort {
	case "price":
		less = func(a, b models.Service) bool { return a.Price < b.Price }
	case "rating":
		less = func(a, b models.Service) bool { return a.Rating < b.Rating }
	case "name":
		less = func(a, b models.Service) bool { return a.Name < b.Name }
	}
	desc := q.Order != "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	return paginate(matched, q.PageQuery), len(matched), nil
}

func (s *Services) Deactivate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[id]
	if !ok || !svc.IsActive {
		return repository.ErrNotFound
	}
	svc.IsActive = false
	svc.UpdatedAt = s.now()
	s.services[id] = svc
	return nil
}
