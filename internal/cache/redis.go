package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gotrip/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix = "catalog:"
	sessionsKey      = "analytics:sessions"

	// sessions older than this are pruned from the sorted set
	sessionRetention = time.Hour
)

type Config struct {
	Enabled bool
	URL     string
	TTL     time.Duration
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.ReadTimeout = 2 * time.Second
	opt.WriteTimeout = 2 * time.Second
	opt.DialTimeout = 5 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opt.Addr, "db", opt.DB)
	return NewWithClient(client, cfg.TTL), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func catalogKey(kind models.ServiceKind) string {
	return catalogKeyPrefix + string(kind)
}

func pageField(q models.ServiceListQuery) string {
	return fmt.Sprintf("p%d:l%d:%s:%s", q.Page, q.Limit, q.Sort, q.Order)
}

// GetServicePage returns a cached catalog page. Misses and Redis failures both
// report false; failures are logged.
func (c *Cache) GetServicePage(ctx context.Context, q models.ServiceListQuery) (*models.Page[models.Service], bool) {
	data, err := c.client.HGet(ctx, catalogKey(q.Kind), pageField(q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Catalog cache lookup failed", "kind", q.Kind, "error", err)
		}
		return nil, false
	}

	var page models.Page[models.Service]
	if err := json.Unmarshal(data, &page); err != nil {
		slog.Warn("Discarding corrupt catalog cache entry", "kind", q.Kind, "error", err)
		return nil, false
	}
	return &page, true
}

func (c *Cache) SetServicePage(ctx context.Context, q models.ServiceListQuery, page models.Page[models.Service]) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	key := catalogKey(q.Kind)
	if err := c.client.HSet(ctx, key, pageField(q), data).Err(); err != nil {
		slog.Warn("Catalog cache write failed", "kind", q.Kind, "error", err)
		return
	}
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		slog.Warn("Catalog cache expire failed", "kind", q.Kind, "error", err)
	}
}

// InvalidateKind drops every cached page of one catalog kind.
func (c *Cache) InvalidateKind(ctx context.Context, kind models.ServiceKind) error {
	if err := c.client.Del(ctx, catalogKey(kind)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// TouchSession marks a visitor session as seen at the given time.
func (c *Cache) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	if err := c.client.ZAdd(ctx, sessionsKey, redis.Z{Score: float64(at.Unix()), Member: sessionID}).Err(); err != nil {
		return fmt.Errorf("failed to track session: %w", err)
	}
	cutoff := strconv.FormatInt(at.Add(-sessionRetention).Unix(), 10)
	if err := c.client.ZRemRangeByScore(ctx, sessionsKey, "-inf", "("+cutoff).Err(); err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}
	return nil
}

// ActiveSessions counts sessions seen at or after since.
func (c *Cache) ActiveSessions(ctx context.Context, since time.Time) (int64, error) {
	n, err := c.client.ZCount(ctx, sessionsKey, strconv.FormatInt(since.Unix(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
