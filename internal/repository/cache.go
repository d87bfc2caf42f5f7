package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shortlinkhq/shortlink/internal/config"
	"github.com/shortlinkhq/shortlink/internal/models"
)

// ErrCacheMiss is returned by Cache.GetLink when neither a positive nor
// a negative entry exists for the key. It is distinct from ErrNotFound,
// which means "looked it up, link genuinely doesn't exist" — a cache
// miss means "don't know, ask the store".
var ErrCacheMiss = errors.New("cache miss")

// tombstone is the sentinel value stored for a negative cache entry
// (spec §4.6: short-TTL caching of "this code does not resolve").
const tombstone = "\x00absent"

// Cache is the redirect-path lookup cache. A resolved link is stored
// under a positive TTL; a deliberately-missing one is stored under a
// shorter negative TTL to blunt scraping/guessing traffic without
// hammering Postgres on every miss.
type Cache interface {
	GetLink(ctx context.Context, domainID int64, code string) (*models.Link, error)
	SetLink(ctx context.Context, domainID int64, code string, link *models.Link) error
	SetNegative(ctx context.Context, domainID int64, code string) error
	Invalidate(ctx context.Context, domainID int64, code string) error
	Ping(ctx context.Context) error
}

func cacheKey(domainID int64, code string) string {
	return fmt.Sprintf("link:%d:%s", domainID, code)
}

// RedisCache is the external-backend Cache implementation.
type RedisCache struct {
	redis       *RedisClient
	positiveTTL time.Duration
	negativeTTL time.Duration
}

func NewRedisCache(redis *RedisClient, cfg config.CacheConfig) *RedisCache {
	return &RedisCache{
		redis:       redis,
		positiveTTL: time.Duration(cfg.TTLSeconds) * time.Second,
		negativeTTL: time.Duration(cfg.NegativeTTLSeconds) * time.Second,
	}
}

func (c *RedisCache) GetLink(ctx context.Context, domainID int64, code string) (*models.Link, error) {
	raw, err := c.redis.Get(ctx, cacheKey(domainID, code))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	if raw == tombstone {
		return nil, ErrNotFound
	}
	var link models.Link
	if err := json.Unmarshal([]byte(raw), &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *RedisCache) SetLink(ctx context.Context, domainID int64, code string, link *models.Link) error {
	encoded, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey(domainID, code), string(encoded), c.positiveTTL)
}

func (c *RedisCache) SetNegative(ctx context.Context, domainID int64, code string) error {
	return c.redis.Set(ctx, cacheKey(domainID, code), tombstone, c.negativeTTL)
}

func (c *RedisCache) Invalidate(ctx context.Context, domainID int64, code string) error {
	return c.redis.Delete(ctx, cacheKey(domainID, code))
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx)
}

// NullCache is selected when no cache backend is configured (spec
// §4.6/§9: absence of REDIS_URL/REDIS_HOST disables caching entirely
// rather than failing startup). Every lookup misses; every write is a
// no-op.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (NullCache) GetLink(ctx context.Context, domainID int64, code string) (*models.Link, error) {
	return nil, ErrCacheMiss
}

func (NullCache) SetLink(ctx context.Context, domainID int64, code string, link *models.Link) error {
	return nil
}

func (NullCache) SetNegative(ctx context.Context, domainID int64, code string) error {
	return nil
}

func (NullCache) Invalidate(ctx context.Context, domainID int64, code string) error {
	return nil
}

func (NullCache) Ping(ctx context.Context) error { return nil }
