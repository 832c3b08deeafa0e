package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.CompletionInterval)

	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Auth.Secret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("CACHE_TTL_SEC", "60")
	t.Setenv("CORS_ORIGINS", "https://gotrip.example, https://admin.gotrip.example")
	t.Setenv("BOOKING_COMPLETION_INTERVAL", "15m")
	t.Setenv("ELASTICSEARCH_ENABLED", "1")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://gotrip.example", "https://admin.gotrip.example"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.CompletionInterval)
	assert.True(t, cfg.Elasticsearch.Enabled)
}

func TestValidateRequiresSecretInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)

	cfg.Auth.Secret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("NATS_ENABLED", "perhaps")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.NATS.Enabled)
}
