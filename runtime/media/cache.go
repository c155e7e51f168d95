package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Default cache settings.
const (
	DefaultCacheEntries = 128
	DefaultCacheTTL     = time.Hour
	DefaultCachePrefix  = "ttswrapper:conv"
)

// Cache stores converted audio keyed by source content and target.
// A miss is reported as ok=false with a nil error. Implementations must not
// retain the slice passed to Set or hand out slices they keep.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
}

// MemoryCache is a process-local LRU cache.
type MemoryCache struct {
	lru *lru.Cache[string, []byte]
}

// NewMemoryCache creates an LRU cache holding up to size results.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultCacheEntries
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

// Get returns the cached result for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(data), true, nil
}

// Set stores data under key, evicting the least recently used entry if full.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.lru.Add(key, bytes.Clone(data))
	return nil
}

// Len returns the number of cached results.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// RedisCache shares converted results between processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithCacheTTL sets how long results are kept. Zero keeps them until evicted.
func WithCacheTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

// WithCachePrefix sets the key prefix.
func WithCachePrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache creates a Redis-backed cache.
//
// Example:
//
//	cache := NewRedisCache(
//	    redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//	    WithCacheTTL(30 * time.Minute),
//	)
func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		ttl:    DefaultCacheTTL,
		prefix: DefaultCachePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return data, true, nil
}

// Set stores data under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}
