package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protocolDocs() []Doc {
	return []Doc{
		{ID: "1", Type: ProtocolDoc, Fields: map[string]any{
			"type": "cardiac_arrest", "category": "medical", "name": "Cardiac Arrest (CPR)",
			"description": "Person is unresponsive and not breathing normally",
			"steps":       []string{"Call 911", "Push hard and fast in the center of the chest"},
		}},
		{ID: "2", Type: ProtocolDoc, Fields: map[string]any{
			"type": "choking", "category": "medical", "name": "Choking",
			"description": "Airway blocked by a foreign object",
			"steps":       []string{"Give 5 back blows", "Give 5 abdominal thrusts"},
		}},
		{ID: "3", Type: ProtocolDoc, Fields: map[string]any{
			"type": "fire", "category": "fire", "name": "Fire Emergency",
			"description": "Fire or smoke in a building",
			"steps":       []string{"Get out and stay out", "Call 911 from outside"},
		}},
	}
}

func newIndex(t *testing.T) Engine {
	t.Helper()
	e, err := New(Config{BatchSize: 2}, ProtocolMapping())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	require.NoError(t, e.IndexBatch(context.Background(), protocolDocs()))
	return e
}

func TestIndexBatchCount(t *testing.T) {
	n, err := newIndex(t).Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestSearchRanksMatches(t *testing.T) {
	e := newIndex(t)
	ctx := context.Background()

	hits, err := e.Search(ctx, "choking", ProtocolFields())
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "2", hits[0].ID)

	hits, err = e.Search(ctx, "smoke", ProtocolFields())
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "3", hits[0].ID)

	hits, err = e.Search(ctx, "chest compressions breathing", ProtocolFields())
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "1", hits[0].ID)

	hits, err = e.Search(ctx, "   ", ProtocolFields())
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexUpdatesExisting(t *testing.T) {
	e := newIndex(t)
	ctx := context.Background()
	require.NoError(t, e.Index(ctx, Doc{ID: "4", Type: ProtocolDoc, Fields: map[string]any{
		"type": "stroke", "category": "medical", "name": "Stroke", "description": "Face drooping, arm weakness",
	}}))

	hits, err := e.Search(ctx, "stroke", ProtocolFields())
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "4", hits[0].ID)
}

func TestClosedEngine(t *testing.T) {
	e, err := New(Config{}, ProtocolMapping())
	require.NoError(t, err)
	require.NoError(t, e.Close())
	_, err = e.Search(context.Background(), "fire", ProtocolFields())
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, e.Close())
}
