// Package dedup remembers provider message IDs so webhook retries are
// processed at most once.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache answers whether a provider message ID was already seen. Seen
// marks the ID and reports the previous state atomically. Forget releases
// a mark so the provider's redelivery of an unprocessed message is not
// dropped.
type Cache interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Forget(ctx context.Context, messageID string) error
}

const keyPrefix = "dedup:msg:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a Cache on a Redis client. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Seen(ctx context.Context, messageID string) (bool, error) {
	set, err := c.client.SetNX(ctx, keyPrefix+messageID, "1", c.ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

func (c *redisCache) Forget(ctx context.Context, messageID string) error {
	return c.client.Del(ctx, keyPrefix+messageID).Err()
}

type memoryCache struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryCache builds a process-local Cache for tests and dev runs.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{seen: make(map[string]time.Time), ttl: ttl}
}

func (c *memoryCache) Seen(ctx context.Context, messageID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if at, ok := c.seen[messageID]; ok && now.Sub(at) < c.ttl {
		return true, nil
	}
	c.seen[messageID] = now
	return false, nil
}

func (c *memoryCache) Forget(ctx context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, messageID)
	return nil
}
