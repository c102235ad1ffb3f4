package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// goCacheWrapper go-cache包装器
type goCacheWrapper struct {
	cache *gocache.Cache
}

// NewGoCache 创建基于go-cache的本地缓存，后台按 CleanupInterval 清理过期项
func NewGoCache(config LocalConfig) Cache {
	def := DefaultLocalConfig()
	if config.DefaultExpiration <= 0 {
		config.DefaultExpiration = def.DefaultExpiration
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	return &goCacheWrapper{cache: gocache.New(config.DefaultExpiration, config.CleanupInterval)}
}

func ttlOrDefault(expiration time.Duration) time.Duration {
	if expiration <= 0 {
		return gocache.DefaultExpiration
	}
	return expiration
}

func (gc *goCacheWrapper) Get(_ context.Context, key string) ([]byte, bool) {
	v, found := gc.cache.Get(key)
	if !found {
		return nil, false
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), raw...), true
}

func (gc *goCacheWrapper) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	gc.cache.Set(key, append([]byte(nil), value...), ttlOrDefault(expiration))
	return nil
}

// SetNX go-cache 的 Add 在键已存在时返回错误
func (gc *goCacheWrapper) SetNX(_ context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	if err := gc.cache.Add(key, append([]byte(nil), value...), ttlOrDefault(expiration)); err != nil {
		return false, nil
	}
	return true, nil
}

func (gc *goCacheWrapper) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		gc.cache.Delete(k)
	}
	return nil
}

func (gc *goCacheWrapper) Clear(_ context.Context) error {
	gc.cache.Flush()
	return nil
}

func (gc *goCacheWrapper) Close() error {
	gc.cache.Flush()
	return nil
}
