package pokeapi_test

import (
	"context"
	"testing"
	"time"

	"pokeusers/internal/pokeapi"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*pokeapi.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return pokeapi.NewRedisCache(client, ttl, zerolog.Nop()), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t, 10*time.Minute)

	cache.Set(ctx, "basic-pikachu", []byte(`{"id":25}`))

	value, ok := cache.Get(ctx, "basic-pikachu")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":25}`, string(value))
	assert.True(t, mr.Exists("pokeapi:basic-pikachu"))
	assert.Equal(t, 10*time.Minute, mr.TTL("pokeapi:basic-pikachu"))
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t, 10*time.Minute)

	cache.Set(ctx, "basic-pikachu", []byte(`{"id":25}`))
	mr.FastForward(10 * time.Minute)

	_, ok := cache.Get(ctx, "basic-pikachu")
	assert.False(t, ok)
}

func TestRedisCache_ClearOnlyOwnKeys(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t, time.Minute)

	require.NoError(t, mr.Set("session:1", "keep"))
	cache.Set(ctx, "basic-1", []byte("1"))
	cache.Set(ctx, "details-1", []byte("2"))

	cache.Clear(ctx)

	_, ok := cache.Get(ctx, "basic-1")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "details-1")
	assert.False(t, ok)
	assert.True(t, mr.Exists("session:1"))
}

func TestRedisCache_UnavailableIsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t, time.Minute)

	cache.Set(ctx, "basic-1", []byte("1"))
	mr.Close()

	_, ok := cache.Get(ctx, "basic-1")
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		cache.Set(ctx, "basic-2", []byte("2"))
		cache.Clear(ctx)
	})
}
