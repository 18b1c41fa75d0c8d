package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/pkg/logger"
)

// cacheEntry is the persisted-cache value: the shaped restaurant plus the
// instant it was written, so readers can judge staleness themselves.
type cacheEntry struct {
	Restaurant model.Restaurant `json:"restaurant"`
	CachedAt   time.Time        `json:"cached_at"`
}

// RestaurantCache is the Redis-backed second cache tier. Entries are always
// replaced wholesale, never partially updated.
type RestaurantCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRestaurantCache wraps a Redis client. ttl bounds how long Redis keeps an
// entry; freshness on read is still decided by the caller from CachedAt.
func NewRestaurantCache(client *redis.Client, ttl time.Duration) *RestaurantCache {
	return &RestaurantCache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return fmt.Sprintf("restaurant:%s", id)
}

// Get returns the cached restaurant and its write time, or (nil, zero, nil)
// when the key is absent.
func (c *RestaurantCache) Get(ctx context.Context, id string) (*model.Restaurant, time.Time, error) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry: treat as a miss, the read path will rewrite it.
		logger.Warn("Discarding corrupt restaurant cache entry", map[string]interface{}{
			"restaurant_id": id,
			"error":         err.Error(),
		})
		return nil, time.Time{}, nil
	}

	return &entry.Restaurant, entry.CachedAt, nil
}

// Put stores a restaurant, replacing any prior entry.
func (c *RestaurantCache) Put(ctx context.Context, id string, restaurant *model.Restaurant, cachedAt time.Time) error {
	raw, err := json.Marshal(cacheEntry{Restaurant: *restaurant, CachedAt: cachedAt})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(id), raw, c.ttl).Err()
}

// Delete removes a cached restaurant.
func (c *RestaurantCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}
