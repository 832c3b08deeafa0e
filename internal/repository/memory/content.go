package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type Blog struct{ *store }

func (s *Blog) Create(_ context.Context, p *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(p.Slug, uuid.Nil) {
		return repository.ErrDuplicate
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Tags = cloneStrings(p.Tags)
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = *p
	return nil
}

func (s *Blog) Update(_ context.Context, p *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.slugTaken(p.Slug, p.ID) {
		return repository.ErrDuplicate
	}
	p.AuthorID = current.AuthorID
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now()
	s.posts[p.ID] = *p
	return nil
}

func (s *Blog) slugTaken(slug string, exclude uuid.UUID) bool {
	for _, p := range s.posts {
		if p.Slug == slug && p.ID != exclude {
			return true
		}
	}
	return false
}

func (s *Blog) GetByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Blog) GetBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Blog) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTaken(slug, exclude), nil
}

func (s *Blog) List(_ context.Context, q models.BlogListQuery) ([]models.BlogPost, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.BlogPost
	for _, p := range s.posts {
		switch {
		case !q.IncludeDrafts && p.Status != models.BlogPublished,
			q.Tag != "" && !slices.Contains(p.Tags, q.Tag),
			q.Search != "" && !containsFold(p.Title, q.Search) && !containsFold(p.Excerpt, q.Search):
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return publishedOrCreated(matched[i]).After(publishedOrCreated(matched[j]))
	})
	return paginate(matched, q.PageQuery), len(matched), nil
}

func publishedOrCreated(p models.BlogPost) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

type Newsletter struct{ *store }

func (s *Newsletter) Create(_ context.Context, sub *models.NewsletterSubscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subscribers {
		if strings.EqualFold(existing.Email, sub.Email) {
			return repository.ErrDuplicate
		}
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.SubscribedAt = s.now()
	s.subscribers[sub.ID] = *sub
	return nil
}

func (s *Newsletter) Update(_ context.Context, sub *models.NewsletterSubscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[sub.ID]; !ok {
		return repository.ErrNotFound
	}
	s.subscribers[sub.ID] = *sub
	return nil
}

func (s *Newsletter) GetByEmail(_ context.Context, email string) (*models.NewsletterSubscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if strings.EqualFold(sub.Email, email) {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *Newsletter) List(_ context.Context, q models.PageQuery) ([]models.NewsletterSubscriber, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]models.NewsletterSubscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubscribedAt.After(subs[j].SubscribedAt) })
	return paginate(subs, q), len(subs), nil
}

type Contacts struct{ *store }

func (s *Contacts) Create(_ context.Context, m *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = s.now()
	s.contacts[m.ID] = *m
	return nil
}

func (s *Contacts) List(_ context.Context, q models.ContactListQuery) ([]models.ContactMessage, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.ContactMessage
	for _, m := range s.contacts {
		if q.Handled == nil || m.Handled == *q.Handled {
			matched = append(matched, m)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, q.PageQuery), len(matched), nil
}

func (s *Contacts) MarkHandled(_ context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	m.Handled = true
	s.contacts[id] = m
	return &m, nil
}
