// Package cache stores generated presentation media so a restart or a
// second chat does not pay for the same portrait twice.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const PortraitTTL = 30 * 24 * time.Hour

// ErrMiss is returned by every Get on a missing key.
var ErrMiss = errors.New("cache miss")

// Store is what callers need from either backend.
type Store interface {
	Key(parts ...string) string
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var (
	_ Store = (*Cache)(nil)
	_ Store = (*Memory)(nil)
)

// Open connects to Redis at url. An empty url or an unreachable server
// yields a process-local Memory instead. The returned func closes the
// connection and is always safe to call.
func Open(url string, prefix string) (Store, func() error) {
	if url == "" {
		log.Println("[Cache] REDIS_URL not set, caching in memory")
		return NewMemory(prefix), func() error { return nil }
	}
	c, err := NewRedisCache(url, prefix)
	if err != nil {
		log.Printf("[Cache] Redis unavailable, caching in memory: %v", err)
		return NewMemory(prefix), func() error { return nil }
	}
	log.Println("[Cache] Using Redis")
	return c, c.Close
}

type Cache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(url string, prefix string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *Cache) Key(parts ...string) string {
	return joinKey(c.prefix, parts)
}

func joinKey(prefix string, parts []string) string {
	if prefix == "" {
		return strings.Join(parts, ":")
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (c *Cache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
