package storage

import (
	"context"
	"time"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/cache"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/metrics"

	"go.uber.org/zap"
)

const (
	keyProtocolsAll = "protocols:all"
	keyProtocolType = "protocols:type:"
	keyContacts     = "contacts:"
)

// CachedStorage 缓存读多写少的规程与联系人列表，其余方法直接透传
type CachedStorage struct {
	Storage
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewCachedStorage(inner Storage, c cache.Cache, ttl time.Duration, m *metrics.Metrics) *CachedStorage {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStorage{Storage: inner, cache: c, ttl: ttl, metrics: m}
}

func contactsKey(country string) string { return keyContacts + country }

func contactsTypeKey(country, contactType string) string {
	return keyContacts + country + ":" + contactType
}

// load 命中缓存则返回，否则调用 fetch 并回填；nil 结果不缓存
func load[T any](ctx context.Context, s *CachedStorage, name, key string, fetch func() (T, bool, error)) (T, error) {
	if v, ok := cache.GetJSON[T](ctx, s.cache, key); ok {
		s.metrics.RecordCacheHit(name)
		return v, nil
	}
	s.metrics.RecordCacheMiss(name)
	v, keep, err := fetch()
	if err != nil || !keep {
		return v, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, v, s.ttl); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func (s *CachedStorage) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *CachedStorage) GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error) {
	return load(ctx, s, "protocols", keyProtocolsAll, func() ([]models.EmergencyProtocol, bool, error) {
		list, err := s.Storage.GetEmergencyProtocols(ctx)
		return list, list != nil, err
	})
}

func (s *CachedStorage) GetEmergencyProtocol(ctx context.Context, protocolType string) (*models.EmergencyProtocol, error) {
	return load(ctx, s, "protocols", keyProtocolType+protocolType, func() (*models.EmergencyProtocol, bool, error) {
		p, err := s.Storage.GetEmergencyProtocol(ctx, protocolType)
		return p, p != nil, err
	})
}

func (s *CachedStorage) CreateEmergencyProtocol(ctx context.Context, in models.ProtocolInsert) (*models.EmergencyProtocol, error) {
	p, err := s.Storage.CreateEmergencyProtocol(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyProtocolsAll, keyProtocolType+p.Type)
	return p, nil
}

func (s *CachedStorage) GetEmergencyContacts(ctx context.Context, country string) ([]models.EmergencyContact, error) {
	return load(ctx, s, "contacts", contactsKey(country), func() ([]models.EmergencyContact, bool, error) {
		list, err := s.Storage.GetEmergencyContacts(ctx, country)
		return list, list != nil, err
	})
}

func (s *CachedStorage) GetEmergencyContactsByType(ctx context.Context, contactType, country string) ([]models.EmergencyContact, error) {
	return load(ctx, s, "contacts", contactsTypeKey(country, contactType), func() ([]models.EmergencyContact, bool, error) {
		list, err := s.Storage.GetEmergencyContactsByType(ctx, contactType, country)
		return list, list != nil, err
	})
}

func (s *CachedStorage) CreateEmergencyContact(ctx context.Context, in models.ContactInsert) (*models.EmergencyContact, error) {
	c, err := s.Storage.CreateEmergencyContact(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, contactsKey(c.Country), contactsTypeKey(c.Country, c.Type))
	return c, nil
}
