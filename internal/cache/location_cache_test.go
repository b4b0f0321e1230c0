package cache

import (
	"context"
	"testing"
	"time"

	"facility-ops-api-server/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *LocationCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewLocationCache(client, time.Minute)
}

func TestLocationCacheRoundTrip(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	loc := &models.FloorLocation{
		ScopedBase:  models.ScopedBase{ID: primitive.NewObjectID(), FacilityID: primitive.NewObjectID(), Version: 2},
		FloorNumber: 3,
		FloorName:   "Third Floor",
		QRCode:      "FL_abc_3_DEADBEEF",
		IsActive:    true,
	}

	_, found, err := cache.Get(ctx, loc.QRCode)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, loc))
	assert.Equal(t, time.Minute, mr.TTL(locationKey(loc.QRCode)))

	got, found, err := cache.Get(ctx, loc.QRCode)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, loc.ID, got.ID)
	assert.Equal(t, loc.FacilityID, got.FacilityID)
	assert.Equal(t, 3, got.FloorNumber)
	assert.True(t, got.IsActive)

	require.NoError(t, cache.Invalidate(ctx, loc.QRCode))
	_, found, err = cache.Get(ctx, loc.QRCode)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocationCacheExpiry(t *testing.T) {
	mr, cache := setupTestRedis(t)
	ctx := context.Background()

	loc := &models.FloorLocation{QRCode: "FL_x_1_00000000"}
	require.NoError(t, cache.Set(ctx, loc))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.Get(ctx, loc.QRCode)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocationCacheCorruptEntryIsMiss(t *testing.T) {
	mr, cache := setupTestRedis(t)
	require.NoError(t, mr.Set(locationKey("bad"), "{not json"))

	_, found, err := cache.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(locationKey("bad")))
}

func TestLocationCacheRedisDown(t *testing.T) {
	mr, cache := setupTestRedis(t)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "any")
	assert.Error(t, err)
}
