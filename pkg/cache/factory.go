package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NewCache 创建缓存实例
func NewCache(config Config) (Cache, error) {
	switch strings.ToLower(config.Type) {
	case "", "local":
		return NewLocalCache(config.Local), nil
	case "gocache":
		return NewGoCache(config.Local), nil
	case "redis":
		rc, err := NewRedisCache(config.Redis)
		if err != nil {
			return nil, err
		}
		if config.Layered {
			return NewLayeredCache(NewLocalCache(config.Local), rc, time.Minute), nil
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}

// layeredCache 分层缓存：本地缓存在前，分布式缓存在后
type layeredCache struct {
	local       Cache
	distributed Cache
	localTTL    time.Duration
}

// NewLayeredCache 组合本地与分布式缓存，本地层过期时间通常更短
func NewLayeredCache(local, distributed Cache, localTTL time.Duration) Cache {
	return &layeredCache{local: local, distributed: distributed, localTTL: localTTL}
}

func (lc *layeredCache) localExpiration(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.localTTL {
		return expiration
	}
	return lc.localTTL
}

// Get 先查本地，未命中再查分布式并回填本地
func (lc *layeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := lc.local.Get(ctx, key); ok {
		return v, true
	}
	if v, ok := lc.distributed.Get(ctx, key); ok {
		_ = lc.local.Set(ctx, key, v, lc.localTTL)
		return v, true
	}
	return nil, false
}

func (lc *layeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := lc.distributed.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return lc.local.Set(ctx, key, value, lc.localExpiration(expiration))
}

// SetNX 以分布式层为准
func (lc *layeredCache) SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	ok, err := lc.distributed.SetNX(ctx, key, value, expiration)
	if err != nil || !ok {
		return ok, err
	}
	return true, lc.local.Set(ctx, key, value, lc.localExpiration(expiration))
}

func (lc *layeredCache) Delete(ctx context.Context, keys ...string) error {
	if err := lc.local.Delete(ctx, keys...); err != nil {
		return err
	}
	return lc.distributed.Delete(ctx, keys...)
}

func (lc *layeredCache) Clear(ctx context.Context) error {
	if err := lc.local.Clear(ctx); err != nil {
		return err
	}
	return lc.distributed.Clear(ctx)
}

func (lc *layeredCache) Close() error {
	if err := lc.local.Close(); err != nil {
		return err
	}
	return lc.distributed.Close()
}
