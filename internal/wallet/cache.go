package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotCached = errors.New("wallet snapshot not cached")
)

const (
	keyPrefix  = "wallet:"
	DefaultTTL = 30 * time.Minute
)

// Cache keeps the last known wallet snapshot per buyer.
type Cache interface {
	Get(ctx context.Context, buyerID string) (Snapshot, error)
	Put(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, buyerID string) error
}

type InMemoryCache struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{snaps: make(map[string]Snapshot)}
}

func (c *InMemoryCache) Get(ctx context.Context, buyerID string) (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.snaps[buyerID]
	if !ok {
		return Snapshot{}, ErrNotCached
	}
	return s, nil
}

func (c *InMemoryCache) Put(ctx context.Context, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[snap.BuyerID] = snap
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, buyerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, buyerID)
	return nil
}

// RedisCache stores snapshots as JSON with a TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, buyerID string) (Snapshot, error) {
	data, err := c.client.Get(ctx, keyPrefix+buyerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrNotCached
		}
		return Snapshot{}, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (c *RedisCache) Put(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+snap.BuyerID, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, buyerID string) error {
	return c.client.Del(ctx, keyPrefix+buyerID).Err()
}
