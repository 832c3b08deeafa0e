package main

import (
	"context"
	"testing"

	"gotrip/internal/auth"
	"gotrip/internal/models"
	"gotrip/internal/repository/memory"
	"gotrip/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeder(dryRun bool) (*Seeder, *memory.Store, *auth.Manager) {
	store := memory.New()
	tokens := auth.NewManager(auth.Config{Secret: "test-secret", BcryptCost: 4})
	catalog := service.NewServices(store.Repositories(), tokens, service.Deps{}).Catalog
	return NewSeeder(store.Users, tokens, catalog, dryRun), store, tokens
}

func TestEnsureAdminCreates(t *testing.T) {
	ctx := context.Background()
	s, store, tokens := newSeeder(false)

	require.NoError(t, s.EnsureAdmin(ctx, " Admin@GoTrip.test ", "correct horse"))

	u, err := store.Users.GetByEmail(ctx, "admin@gotrip.test")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, tokens.CheckPassword(u.PasswordHash, "correct horse"))

	// second run is a no-op
	require.NoError(t, s.EnsureAdmin(ctx, "admin@gotrip.test", ""))
}

func TestEnsureAdminPromotesExisting(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newSeeder(false)
	u := &models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleUser, IsActive: true}
	require.NoError(t, store.Users.Create(ctx, u))

	require.NoError(t, s.EnsureAdmin(ctx, "ana@example.com", ""))

	got, err := store.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestEnsureAdminNeedsPassword(t *testing.T) {
	s, _, _ := newSeeder(false)
	assert.ErrorIs(t, s.EnsureAdmin(context.Background(), "new@gotrip.test", "short"), ErrPasswordRequired)
}

func TestSeedCatalogIsRepeatable(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSeeder(false)

	created, err := s.SeedCatalog(ctx)
	require.NoError(t, err)
	want := 0
	for _, items := range samples {
		want += len(items)
	}
	assert.Equal(t, want, created)

	created, err = s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestSeedDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newSeeder(true)

	created, err := s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	require.NoError(t, s.EnsureAdmin(ctx, "admin@gotrip.test", "correct horse"))
	u, err := store.Users.GetByEmail(ctx, "admin@gotrip.test")
	require.NoError(t, err)
	assert.Nil(t, u)
}
