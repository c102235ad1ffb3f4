package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// lruCache 基于 golang-lru 的本地缓存，容量满时淘汰最久未使用的键
type lruCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, lruEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewLocalCache 创建本地 LRU 缓存
func NewLocalCache(config LocalConfig) Cache {
	size := config.MaxSize
	if size <= 0 {
		size = DefaultLocalConfig().MaxSize
	}
	c, _ := lru.New[string, lruEntry](size)
	return &lruCache{cache: c, ttl: config.DefaultExpiration, now: time.Now}
}

func (lc *lruCache) entry(value []byte, expiration time.Duration) lruEntry {
	if expiration <= 0 {
		expiration = lc.ttl
	}
	e := lruEntry{value: append([]byte(nil), value...)}
	if expiration > 0 {
		e.expiresAt = lc.now().Add(expiration)
	}
	return e
}

func (lc *lruCache) Get(_ context.Context, key string) ([]byte, bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	e, ok := lc.cache.Get(key)
	if !ok {
		return nil, false
	}
	if e.expired(lc.now()) {
		lc.cache.Remove(key)
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

func (lc *lruCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Add(key, lc.entry(value, expiration))
	return nil
}

func (lc *lruCache) SetNX(_ context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if e, ok := lc.cache.Peek(key); ok && !e.expired(lc.now()) {
		return false, nil
	}
	lc.cache.Add(key, lc.entry(value, expiration))
	return true, nil
}

func (lc *lruCache) Delete(_ context.Context, keys ...string) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, k := range keys {
		lc.cache.Remove(k)
	}
	return nil
}

func (lc *lruCache) Clear(_ context.Context) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Purge()
	return nil
}

func (lc *lruCache) Close() error { return nil }
