package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tokocart/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func sampleCart(userID string) *models.Cart {
	return &models.Cart{
		UserID: userID,
		Lines: []models.CartLine{
			{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("19.99"), Name: "Shirt"},
			{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("5"), Name: "Socks"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	body, err := json.Marshal(sampleCart("user123"))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey("user123"), string(body)))

	result, err := cache.Get(context.Background(), "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", result.UserID)
	require.Len(t, result.Lines, 2)
	assert.True(t, decimal.RequireFromString("19.99").Equal(result.Lines[0].Price))
	assert.Equal(t, "44.98", result.Total().StringFixed(2))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("user123"), `{"userId":"user`))

	_, err := cache.Get(context.Background(), "user123")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSet_RoundTripsWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user456", sampleCart("user456")))

	stored, err := mr.Get(cacheKey("user456"))
	require.NoError(t, err)
	assert.Contains(t, stored, `"items"`)

	ttl := mr.TTL(cacheKey("user456"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	got, err := cache.Get(ctx, "user456")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user999", sampleCart("user999")))
	assert.True(t, mr.Exists(cacheKey("user999")))

	require.NoError(t, cache.Delete(ctx, "user999"))
	assert.False(t, mr.Exists(cacheKey("user999")))
	assert.NoError(t, cache.Delete(ctx, "nonexistent"))
}

func TestRedisError_IsNotAMiss(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "user1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNopCache(t *testing.T) {
	var c CartCache = NopCache{}
	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "u", sampleCart("u")))
	_, err := c.Get(ctx, "u")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "u"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}
