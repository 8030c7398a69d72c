package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/nekoneko-space/travel-platform/internal/app/domain/weather"
)

const redisKey = "weather:current"

// MemoryCache is the in-process fallback used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	report  domain.Report
	expires time.Time
	set     bool
}

// NewMemoryCache constructs an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(context.Context) (domain.Report, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set || time.Now().After(c.expires) {
		return domain.Report{}, false, nil
	}
	return c.report, true, nil
}

func (c *MemoryCache) Set(_ context.Context, rep domain.Report, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = rep
	c.expires = time.Now().Add(ttl)
	c.set = true
	return nil
}

// RedisCache stores the current report as JSON under a fixed key with the
// TTL enforced server side.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) (domain.Report, bool, error) {
	raw, err := c.client.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return domain.Report{}, false, nil
	}
	if err != nil {
		return domain.Report{}, false, fmt.Errorf("redis get: %w", err)
	}

	var rep domain.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return domain.Report{}, false, fmt.Errorf("decode cached report: %w", err)
	}
	return rep, true, nil
}

func (c *RedisCache) Set(ctx context.Context, rep domain.Report, ttl time.Duration) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, redisKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
