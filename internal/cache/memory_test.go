package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	entry := &Entry{
		Payload:   json.RawMessage(`[{"date":"2026-08-01"}]`),
		Source:    "live",
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Set(ctx, "activity:berlin:7", entry, time.Minute))

	got, ok := store.Get(ctx, "activity:berlin:7")
	require.True(t, ok)
	assert.Equal(t, entry.Payload, got.Payload)
	assert.Equal(t, "live", got.Source)
}

func TestMemoryStore_MissOnUnknownKey(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(context.Background(), "nope")

	assert.False(t, ok)
	hits, misses, _ := store.Stats().Snapshot()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)
}

func TestMemoryStore_ExpiryEvictsLazily(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &Entry{Source: "mock"}, 15*time.Minute))

	// still fresh just inside the TTL
	current = current.Add(14 * time.Minute)
	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())

	// past the TTL the read misses and drops the entry
	current = current.Add(2 * time.Minute)
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SetRefreshesTTL(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &Entry{Source: "live"}, time.Minute))
	current = current.Add(50 * time.Second)
	require.NoError(t, store.Set(ctx, "k", &Entry{Source: "mock"}, time.Minute))
	current = current.Add(50 * time.Second)

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "mock", got.Source)
}

func TestMemoryStore_StatsCounters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "a", &Entry{}, time.Minute)
	store.Get(ctx, "a")
	store.Get(ctx, "a")
	store.Get(ctx, "b")

	hits, misses, sets := store.Stats().Snapshot()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(1), sets)
}
