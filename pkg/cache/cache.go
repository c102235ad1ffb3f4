package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache 缓存接口，值统一为字节，结构化数据通过 GetJSON/SetJSON 编解码
type Cache interface {
	// Get 获取缓存值，不存在或已过期时返回 false
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set 设置缓存值，expiration 为 0 时使用默认过期时间
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// SetNX 仅当键不存在时设置，返回是否设置成功
	SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error)

	// Delete 删除一个或多个键
	Delete(ctx context.Context, keys ...string) error

	// Clear 清空所有缓存
	Clear(ctx context.Context) error

	// Close 释放资源
	Close() error
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "local"、"gocache" 或 "redis"
	Type  string `env:"CACHE_TYPE"`
	Redis RedisConfig
	Local LocalConfig
	// redis 模式下是否在前面叠加一层本地缓存
	Layered bool
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB"`
	Prefix       string        `env:"REDIS_PREFIX"`
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LocalConfig 本地缓存配置
type LocalConfig struct {
	MaxSize           int
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// DefaultLocalConfig 默认本地缓存配置
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		MaxSize:           1000,
		DefaultExpiration: 5 * time.Minute,
		CleanupInterval:   10 * time.Minute,
	}
}

// GetJSON 读取并反序列化缓存值，反序列化失败视为未命中
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON 序列化后写入缓存
func SetJSON(ctx context.Context, c Cache, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, expiration)
}
