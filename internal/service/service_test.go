package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gotrip/internal/auth"
	"gotrip/internal/models"
	"gotrip/internal/reference"
	"gotrip/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(msg models.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, msg := range n.sent {
		out[i] = msg.Subject
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]any
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][]any{}
	}
	p.events[subject] = append(p.events[subject], data)
	return nil
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[subject])
}

type fixture struct {
	store     *memory.Store
	tokens    *auth.Manager
	notifier  *recordingNotifier
	publisher *recordingPublisher
	svc       *Services

	customer models.Actor
	staff    models.Actor
	admin    models.Actor
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()

	f := &fixture{
		store:     memory.New(),
		tokens:    auth.NewManager(auth.Config{Secret: "test-secret", BcryptCost: 4}),
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	f.store.SetClock(func() time.Time { return testNow })

	deps := Deps{
		Notifier:  f.notifier,
		Publisher: f.publisher,
		Clock:     func() time.Time { return testNow },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewServices(f.store.Repositories(), f.tokens, deps)

	f.customer = f.addUser(t, "Ana Traveler", "ana@example.com", models.RoleUser)
	f.staff = f.addUser(t, "Sam Staff", "sam@gotrip.test", models.RoleStaff)
	f.admin = f.addUser(t, "Ada Admin", "ada@gotrip.test", models.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role models.Role) models.Actor {
	t.Helper()
	u := &models.User{Name: name, Email: email, Role: role, IsActive: true}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return models.Actor{ID: u.ID, Role: role}
}

func (f *fixture) addService(t *testing.T, kind models.ServiceKind, price float64, unit models.PriceUnit) *models.Service {
	t.Helper()
	svc := &models.Service{
		Kind:      kind,
		Name:      "Test " + string(kind) + " " + uuid.NewString()[:6],
		Slug:      "test-" + uuid.NewString()[:8],
		City:      "Almaty",
		Country:   "Kazakhstan",
		Price:     price,
		PriceUnit: unit,
		Currency:  "USD",
		IsActive:  true,
	}
	require.NoError(t, f.store.Services.Create(context.Background(), svc))
	return svc
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func datePtr(d models.Date) *models.Date { return &d }

// collidingSource returns the same candidate for the first n calls.
func collidingSource(first string, n int) reference.Source {
	var mu sync.Mutex
	calls := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= n {
			return first, nil
		}
		return reference.Random()
	}
}
