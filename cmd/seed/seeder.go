package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gotrip/internal/models"
	"gotrip/internal/repository"
)

var ErrPasswordRequired = errors.New("a password of at least 8 characters is required to create the admin")

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type CatalogWriter interface {
	List(ctx context.Context, kind models.ServiceKind, q models.ServiceListQuery) (*models.Page[models.Service], error)
	Create(ctx context.Context, kind models.ServiceKind, req *models.ServiceRequest) (*models.Service, error)
}

// Seeder bootstraps an empty installation. It is safe to run repeatedly.
type Seeder struct {
	users   repository.UserStore
	hasher  PasswordHasher
	catalog CatalogWriter
	dryRun  bool
}

func NewSeeder(users repository.UserStore, hasher PasswordHasher, catalog CatalogWriter, dryRun bool) *Seeder {
	return &Seeder{users: users, hasher: hasher, catalog: catalog, dryRun: dryRun}
}

// EnsureAdmin creates the admin account, or promotes an existing account with
// that email. Roles can only be changed by an admin through the API, so the
// first one has to come from here.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if existing != nil {
		if existing.Role == models.RoleAdmin {
			slog.Info("Admin already exists", "email", email)
			return nil
		}
		if s.dryRun {
			slog.Info("Would promote user to admin", "email", email, "role", existing.Role)
			return nil
		}
		if err := s.users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote %s: %w", email, err)
		}
		slog.Info("Promoted user to admin", "email", email, "user_id", existing.ID)
		return nil
	}

	if len(password) < 8 {
		return ErrPasswordRequired
	}
	if s.dryRun {
		slog.Info("Would create admin", "email", email)
		return nil
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	slog.Info("Created admin", "email", email, "user_id", admin.ID)
	return nil
}

// SeedCatalog adds the sample items of every kind that has no active items yet.
func (s *Seeder) SeedCatalog(ctx context.Context) (int, error) {
	created := 0
	for _, kind := range models.ServiceKinds {
		page, err := s.catalog.List(ctx, kind, models.ServiceListQuery{})
		if err != nil {
			return created, fmt.Errorf("failed to list %ss: %w", kind, err)
		}
		if page.Total > 0 {
			slog.Info("Kind already has items, skipping", "kind", kind, "existing_count", page.Total)
			continue
		}

		for _, req := range samples[kind] {
			if s.dryRun {
				slog.Info("Would create catalog item", "kind", kind, "name", req.Name)
				continue
			}
			item := req
			svc, err := s.catalog.Create(ctx, kind, &item)
			if err != nil {
				return created, fmt.Errorf("failed to create %s %q: %w", kind, req.Name, err)
			}
			slog.Info("Created catalog item", "kind", kind, "slug", svc.Slug)
			created++
		}
	}
	return created, nil
}

func price(v float64) *float64 { return &v }

var samples = map[models.ServiceKind][]models.ServiceRequest{
	models.KindDestination: {
		{Name: "Charyn Canyon", Summary: "Red sandstone canyon east of Almaty", City: "Almaty", Country: "Kazakhstan", Price: price(45), Rating: 4.8},
		{Name: "Registan Square", Summary: "Three madrasahs at the heart of Samarkand", City: "Samarkand", Country: "Uzbekistan", Price: price(20), Rating: 4.9},
	},
	models.KindAccommodation: {
		{Name: "Medeu Mountain Lodge", Summary: "Chalet rooms by the skating rink", City: "Almaty", Country: "Kazakhstan", Price: price(95), Capacity: 2, Rating: 4.5},
		{Name: "Old Town Guesthouse", Summary: "Family run rooms inside the Bukhara old town", City: "Bukhara", Country: "Uzbekistan", Price: price(60), Capacity: 3, Rating: 4.6},
	},
	models.KindGuide: {
		{Name: "Aidos Serikbayev", Summary: "Hiking guide for the Trans-Ili Alatau", City: "Almaty", Country: "Kazakhstan", Price: price(100), Languages: []string{"kk", "ru", "en"}, Rating: 4.9},
	},
	models.KindTranslator: {
		{Name: "Malika Yusupova", Summary: "Business and travel interpreting", City: "Tashkent", Country: "Uzbekistan", Price: price(80), Languages: []string{"uz", "ru", "en"}, Rating: 4.7},
	},
	models.KindPackage: {
		{Name: "Silk Road in Seven Days", Summary: "Tashkent, Samarkand and Bukhara by high speed train", City: "Tashkent", Country: "Uzbekistan", Price: price(890), Capacity: 12, Rating: 4.8},
	},
}
