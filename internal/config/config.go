package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gotrip/internal/auth"
	"gotrip/internal/cache"
	"gotrip/internal/database"
	"gotrip/internal/external"
	"gotrip/internal/mailer"
	"gotrip/internal/messaging"
	"gotrip/internal/notify"
	"gotrip/internal/storage"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	CORSOrigins    []string

	// Interval of the booking completion job in cmd/consumers
	CompletionInterval time.Duration

	Database      database.Config
	Auth          auth.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Mail          mailer.Config
	Storage       storage.Config
	Payment       external.PaymentConfig
	Notify        notify.Config
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	publicURL := getEnv("PUBLIC_BASE_URL", "http://localhost:8080")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"*"}),
		CompletionInterval: getEnvDuration("BOOKING_COMPLETION_INTERVAL", time.Hour),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "gotrip"),
			Password:           getEnv("DB_PASSWORD", "gotrip"),
			DBName:             getEnv("DB_NAME", "gotrip"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Auth: auth.Config{
			Secret:     getEnv("JWT_SECRET", ""),
			TTL:        time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "gotrip"),
			ClientID:  getEnv("NATS_CLIENT_ID", "gotrip-api"),
		},

		Redis: cache.Config{
			Enabled: getEnvBool("REDIS_ENABLED", false),
			URL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:     time.Duration(getEnvInt("CACHE_TTL_SEC", 300)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Mail: mailer.Config{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvInt("SMTP_PORT", 587),
			Username:      getEnv("SMTP_USERNAME", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			From:          getEnv("MAIL_FROM", "no-reply@gotrip.local"),
			StaffEmail:    getEnv("STAFF_EMAIL", "staff@gotrip.local"),
			PublicBaseURL: publicURL,
		},

		Storage: storage.Config{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
			PublicBaseURL:   publicURL,
		},

		Payment: external.PaymentConfig{
			BaseURL:  getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9090"),
			TeamSlug: getEnv("PAYMENT_TEAM_SLUG", ""),
			Password: getEnv("PAYMENT_PASSWORD", ""),
			Timeout:  time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},

		Notify: notify.Config{
			QueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:   getEnvInt("NOTIFY_WORKERS", 2),
		},
	}
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set outside debug mode")

// Validate rejects configurations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		if c.GinMode != "debug" && c.GinMode != "test" {
			return ErrMissingSecret
		}
		c.Auth.Secret = "gotrip-dev-secret"
	}
	if c.Notify.Workers < 1 {
		c.Notify.Workers = 1
	}
	if c.Notify.QueueSize < 1 {
		c.Notify.QueueSize = 1
	}
	return nil
}

// getEnv returns the variable or the default when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
