package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gotrip/internal/auth"
	"gotrip/internal/cache"
	"gotrip/internal/config"
	"gotrip/internal/database"
	"gotrip/internal/handlers"
	"gotrip/internal/logger"
	"gotrip/internal/mailer"
	"gotrip/internal/messaging"
	"gotrip/internal/metrics"
	"gotrip/internal/middleware"
	"gotrip/internal/models"
	"gotrip/internal/notify"
	"gotrip/internal/repository"
	"gotrip/internal/search"
	"gotrip/internal/service"
	"gotrip/internal/storage"

	"github.com/gin-gonic/gin"
)

const connectTimeout = 15 * time.Second

// Server is the HTTP API with its backing connections
type Server struct {
	router     *gin.Engine
	config     *config.Config
	db         *database.DB
	nats       *messaging.NATSClient
	cache      *cache.Cache
	search     *search.ElasticsearchClient
	dispatcher *notify.Dispatcher
	services   *service.Services
	repos      *repository.Repositories
}

// NewServer connects to the database and the optional backends and wires the
// router. Redis, Elasticsearch, NATS and SMTP degrade to disabled features
// when unavailable; the database is required.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	s := &Server{config: cfg, db: db}
	s.repos = repository.NewRepositories(db)

	var deps service.Deps

	if cfg.Redis.Enabled {
		c, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, catalog cache and session tracking disabled", "error", err)
		} else {
			s.cache = c
			deps.Cache = c
			deps.Sessions = c
		}
	}

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, catalog search falls back to SQL", "error", err)
		} else {
			s.search = es
			deps.Index = es
		}
	}

	if images, err := storage.New(cfg.Storage); err != nil {
		slog.Warn("Image storage unavailable, uploads disabled", "error", err)
	} else {
		deps.Images = images
	}

	if cfg.NATS.Enabled {
		nc, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			slog.Warn("NATS unavailable, refunds will not be requested", "error", err)
		} else {
			s.nats = nc
			deps.Publisher = nc
		}
	}

	mail, err := mailer.New(cfg.Mail)
	if err != nil {
		logger.Fatal("Failed to load mail templates", "error", err)
	}
	s.dispatcher = notify.NewDispatcher(cfg.Notify, s.notificationSink(mail))
	s.dispatcher.Start()
	deps.Notifier = s.dispatcher

	tokens := auth.NewManager(cfg.Auth)
	s.services = service.NewServices(s.repos, tokens, deps)

	s.router = NewRouter(cfg, s.services)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	s.router.Static("/uploads", cfg.Storage.UploadDir)

	return s
}

// notificationSink hands notifications to the consumers over NATS when it is
// connected, and sends mail in-process otherwise.
func (s *Server) notificationSink(mail *mailer.Mailer) notify.Sink {
	if s.nats != nil {
		return notify.PublisherSink(s.nats)
	}
	if mail.Configured() {
		return mail
	}
	slog.Warn("SMTP not configured, notifications are logged only")
	return notify.SinkFunc(func(ctx context.Context, n models.Notification) error {
		logger.WithContext(ctx).Info("Notification", "subject", n.Subject, "to", n.To)
		return nil
	})
}

// NewRouter builds the engine with the middleware chain and the /api routes.
func NewRouter(cfg *config.Config, services *service.Services) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(metrics.Middleware())
	router.Use(timeout(cfg.RequestTimeout))
	router.Use(middleware.ErrorEnvelope(cfg.GinMode == gin.DebugMode))

	RegisterRoutes(router, handlers.NewHandlers(services), services.Auth)
	return router
}

func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealth := s.db.HealthCheck(ctx)

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	deps := gin.H{}
	if s.cache != nil {
		deps["redis"] = dependencyStatus(s.cache.HealthCheck(ctx))
	}
	if s.search != nil {
		deps["elasticsearch"] = dependencyStatus(s.search.HealthCheck(ctx))
	}

	c.JSON(status, gin.H{
		"status":       dbHealth.Status,
		"service":      "gotrip-api",
		"database":     dbHealth,
		"dependencies": deps,
	})
}

func dependencyStatus(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for the http.Server and for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup drains pending notifications and closes connections
func (s *Server) Cleanup(ctx context.Context) error {
	if s.dispatcher != nil {
		if err := s.dispatcher.Stop(ctx); err != nil {
			slog.Warn("Notification queue not drained", "error", err)
		}
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
