package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through Redis cache for provider responses. A nil *Cache
// means caching is disabled; all methods are miss-tolerant and never fail
// the surrounding fetch.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache connects to the given Redis address. An empty address returns
// nil, which the client treats as caching disabled.
func NewCache(addr, password string, db int, ttl time.Duration, logger *slog.Logger) *Cache {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
		logger: logger,
	}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Ping verifies the Redis connection. A nil cache reports healthy since
// caching is optional.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetBars returns cached daily bars, reporting a miss for absent or
// undecodable entries.
func (c *Cache) GetBars(ctx context.Context, key string) ([]DailyBar, bool) {
	var bars []DailyBar
	if !c.get(ctx, key, &bars) {
		return nil, false
	}
	return bars, true
}

// SetBars stores daily bars under the configured TTL.
func (c *Cache) SetBars(ctx context.Context, key string, bars []DailyBar) {
	c.set(ctx, key, bars)
}

// GetChain returns a cached chain snapshot.
func (c *Cache) GetChain(ctx context.Context, key string) (*ChainSnapshot, bool) {
	var snap ChainSnapshot
	if !c.get(ctx, key, &snap) {
		return nil, false
	}
	return &snap, true
}

// SetChain stores a chain snapshot under the configured TTL.
func (c *Cache) SetChain(ctx context.Context, key string, snap *ChainSnapshot) {
	c.set(ctx, key, snap)
}

func (c *Cache) get(ctx context.Context, key string, out interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt", "key", key, "error", err)
		return false
	}
	c.logger.DebugContext(ctx, "cache hit", "key", key)
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
