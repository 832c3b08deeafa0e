package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"gotrip/internal/auth"
	"gotrip/internal/config"
	"gotrip/internal/database"
	"gotrip/internal/logger"
	"gotrip/internal/repository"
	"gotrip/internal/search"
	"gotrip/internal/service"
)

var (
	adminEmail    = flag.String("admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "Email of the admin account to create or promote")
	adminPassword = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Password for a newly created admin account")
	withCatalog   = flag.Bool("catalog", false, "Create sample catalog items for kinds that have none")
	dryRun        = flag.Bool("dry-run", false, "Show what would be created without making changes")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	slog.Info("Starting seed...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	var deps service.Deps
	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, seeded items will not be indexed", "error", err)
		} else {
			deps.Index = es
		}
	}

	repos := repository.NewRepositories(db)
	tokens := auth.NewManager(cfg.Auth)
	seeder := NewSeeder(repos.Users, tokens, service.NewServices(repos, tokens, deps).Catalog, *dryRun)

	if *adminEmail != "" {
		if err := seeder.EnsureAdmin(ctx, *adminEmail, *adminPassword); err != nil {
			logger.Fatal("Failed to seed admin", "error", err)
		}
	}

	if *withCatalog {
		created, err := seeder.SeedCatalog(ctx)
		if err != nil {
			logger.Fatal("Failed to seed catalog", "error", err)
		}
		slog.Info("Catalog seeded", "created", created)
	}

	slog.Info("Seed completed successfully!")
}
