package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func implementations() map[string]Cache {
	cfg := LocalConfig{MaxSize: 2, DefaultExpiration: time.Minute, CleanupInterval: time.Minute}
	return map[string]Cache{
		"lru":     NewLocalCache(cfg),
		"gocache": NewGoCache(cfg),
		"layered": NewLayeredCache(NewLocalCache(cfg), NewGoCache(cfg), time.Second),
	}
}

func TestCacheContract(t *testing.T) {
	ctx := context.Background()
	for name, c := range implementations() {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			_, ok := c.Get(ctx, "missing")
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "k", []byte("v1"), 0))
			got, ok := c.Get(ctx, "k")
			require.True(t, ok)
			assert.Equal(t, []byte("v1"), got)

			set, err := c.SetNX(ctx, "k", []byte("v2"), time.Minute)
			require.NoError(t, err)
			assert.False(t, set)
			got, _ = c.Get(ctx, "k")
			assert.Equal(t, []byte("v1"), got)

			set, err = c.SetNX(ctx, "fresh", []byte("x"), time.Minute)
			require.NoError(t, err)
			assert.True(t, set)

			require.NoError(t, c.Delete(ctx, "k", "fresh"))
			_, ok = c.Get(ctx, "k")
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
			require.NoError(t, c.Clear(ctx))
			_, ok = c.Get(ctx, "a")
			assert.False(t, ok)
		})
	}
}

func TestLocalCacheExpiry(t *testing.T) {
	c := NewLocalCache(LocalConfig{MaxSize: 10}).(*lruCache)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	set, err := c.SetNX(ctx, "k", []byte("again"), time.Second)
	require.NoError(t, err)
	assert.True(t, set)
}

func TestLocalCacheEvictsLeastRecent(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{MaxSize: 2})
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"), 0)

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(DefaultLocalConfig())

	type item struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, c, "item", []item{{Name: "fire"}}, 0))
	got, ok := GetJSON[[]item](ctx, c, "item")
	require.True(t, ok)
	assert.Equal(t, []item{{Name: "fire"}}, got)

	_ = c.Set(ctx, "bad", []byte("{"), 0)
	_, ok = GetJSON[[]item](ctx, c, "bad")
	assert.False(t, ok)
}

func TestNewCache(t *testing.T) {
	c, err := NewCache(Config{Type: "gocache"})
	require.NoError(t, err)
	assert.IsType(t, &goCacheWrapper{}, c)

	_, err = NewCache(Config{Type: "memcached"})
	assert.Error(t, err)

	_, err = NewCache(Config{Type: "redis", Redis: RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}})
	assert.Error(t, err)
}

func TestRedisClientUnwrapsLayered(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	rc := &RedisCache{client: client, prefix: "test:"}

	got, ok := RedisClient(rc)
	require.True(t, ok)
	assert.Same(t, client, got)

	got, ok = RedisClient(NewLayeredCache(NewLocalCache(DefaultLocalConfig()), rc, time.Second))
	require.True(t, ok)
	assert.Same(t, client, got)

	_, ok = RedisClient(NewLocalCache(DefaultLocalConfig()))
	assert.False(t, ok)
	_, ok = RedisClient(NewLayeredCache(NewLocalCache(DefaultLocalConfig()), NewGoCache(DefaultLocalConfig()), time.Second))
	assert.False(t, ok)
}
