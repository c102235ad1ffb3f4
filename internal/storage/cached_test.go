package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/cache"
	"EmergencyAssist/pkg/metrics"
	"EmergencyAssist/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorage 统计规程列表与联系人查询落到底层的次数
type countingStorage struct {
	Storage
	protocolLists int
	contactLists  int
	fail          error
}

func (c *countingStorage) GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error) {
	c.protocolLists++
	if c.fail != nil {
		return nil, c.fail
	}
	return c.Storage.GetEmergencyProtocols(ctx)
}

func (c *countingStorage) GetEmergencyContacts(ctx context.Context, country string) ([]models.EmergencyContact, error) {
	c.contactLists++
	return c.Storage.GetEmergencyContacts(ctx, country)
}

func newCached(t *testing.T) (*CachedStorage, *countingStorage, *metrics.Metrics) {
	t.Helper()
	inner := &countingStorage{Storage: NewMemStorageWithSignals(util.NewSignals())}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewCachedStorage(inner, cache.NewLocalCache(cache.DefaultLocalConfig()), time.Minute, m), inner, m
}

func TestCachedProtocolList(t *testing.T) {
	s, inner, _ := newCached(t)
	ctx := context.Background()

	first, err := s.GetEmergencyProtocols(ctx)
	require.NoError(t, err)
	second, err := s.GetEmergencyProtocols(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.protocolLists)

	_, err = s.CreateEmergencyProtocol(ctx, models.ProtocolInsert{
		Type: "drowning", Name: "Drowning", Description: "d",
		Instructions: models.Instructions{Steps: []string{"Call 911"}},
		Severity:     models.SeverityHigh, Category: "medical",
	})
	require.NoError(t, err)

	third, err := s.GetEmergencyProtocols(ctx)
	require.NoError(t, err)
	assert.Len(t, third, len(first)+1)
	assert.Equal(t, 2, inner.protocolLists)
}

func TestCachedErrorsNotStored(t *testing.T) {
	s, inner, _ := newCached(t)
	ctx := context.Background()
	inner.fail = errors.New("db down")

	_, err := s.GetEmergencyProtocols(ctx)
	assert.Error(t, err)

	inner.fail = nil
	list, err := s.GetEmergencyProtocols(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, 2, inner.protocolLists)
}

func TestCachedMissingProtocolNotStored(t *testing.T) {
	s, _, _ := newCached(t)
	ctx := context.Background()

	p, err := s.GetEmergencyProtocol(ctx, "drowning")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = s.CreateEmergencyProtocol(ctx, models.ProtocolInsert{
		Type: "drowning", Name: "Drowning", Description: "d",
		Instructions: models.Instructions{Steps: []string{"Call 911"}},
		Severity:     models.SeverityHigh, Category: "medical",
	})
	require.NoError(t, err)

	p, err = s.GetEmergencyProtocol(ctx, "drowning")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Drowning", p.Name)
}

func TestCachedContactsInvalidatedOnCreate(t *testing.T) {
	s, inner, m := newCached(t)
	ctx := context.Background()

	_, err := s.GetEmergencyContacts(ctx, "US")
	require.NoError(t, err)
	_, err = s.GetEmergencyContacts(ctx, "US")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.contactLists)

	_, err = s.CreateEmergencyContact(ctx, models.ContactInsert{
		Name: "County Fire", PhoneNumber: "555-0100", Type: models.ContactFire, Country: "US",
	})
	require.NoError(t, err)

	list, err := s.GetEmergencyContacts(ctx, "US")
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, 2, inner.contactLists)

	expected := `
# HELP cache_hits_total Total number of cache hits
# TYPE cache_hits_total counter
cache_hits_total{cache="contacts"} 1
# HELP cache_misses_total Total number of cache misses
# TYPE cache_misses_total counter
cache_misses_total{cache="contacts"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "cache_hits_total", "cache_misses_total"))
}

func TestObservedCountsOperations(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	s := NewObserved(NewMemStorageWithSignals(util.NewSignals()), m)
	ctx := context.Background()

	_, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.UserInsert{Username: "a", Password: "p"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.UserInsert{Username: "a", Password: "p"})
	require.ErrorIs(t, err, ErrDuplicateUsername)

	expected := `
# HELP storage_operations_total Total number of storage operations
# TYPE storage_operations_total counter
storage_operations_total{operation="create_user",status="error"} 1
storage_operations_total{operation="create_user",status="ok"} 1
storage_operations_total{operation="get_user",status="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "storage_operations_total"))
}
