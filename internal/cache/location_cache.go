// Package cache keeps hot lookups in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"facility-ops-api-server/config"
	"facility-ops-api-server/internal/models"

	"github.com/go-redis/redis/v8"
)

const locationKeyPrefix = "facility-ops:floor-location:qr:"

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// LocationCache maps QR codes to floor locations. Scans hit the same code
// many times a day; entries expire after ttl and are dropped on every write.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	return &LocationCache{client: client, ttl: ttl}
}

func locationKey(code string) string {
	return locationKeyPrefix + code
}

// Get returns the cached location; found is false on a miss.
func (c *LocationCache) Get(ctx context.Context, code string) (loc *models.FloorLocation, found bool, err error) {
	raw, err := c.client.Get(ctx, locationKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	loc = &models.FloorLocation{}
	if err := json.Unmarshal(raw, loc); err != nil {
		// A corrupt entry is a miss; drop it so the next read repopulates.
		_ = c.client.Del(ctx, locationKey(code)).Err()
		return nil, false, nil
	}
	return loc, true, nil
}

func (c *LocationCache) Set(ctx context.Context, loc *models.FloorLocation) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKey(loc.QRCode), raw, c.ttl).Err()
}

func (c *LocationCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, locationKey(code)).Err()
}
