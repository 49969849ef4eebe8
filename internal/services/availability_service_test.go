package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityFixture(t *testing.T, handler http.HandlerFunc) (AvailabilityService, *miniredis.Miniredis, *int64) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	svc := NewAvailabilityService(rdb, AvailabilityConfig{
		FeedURL:  server.URL,
		CacheTTL: 10 * time.Minute,
		Timeout:  2 * time.Second,
	})
	return svc, mr, &hits
}

func feedHandler(days []AvailabilityDay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(days)
	}
}

func TestGetSnapshot_FetchesAndFillsCache(t *testing.T) {
	days := []AvailabilityDay{
		{Date: "2026-06-01", RoomsOpen: 3},
		{Date: "2026-06-02", Closed: true},
	}
	svc, mr, hits := newAvailabilityFixture(t, feedHandler(days))

	snapshot, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Days, 2)
	assert.Equal(t, 3, snapshot.Days[0].RoomsOpen)
	assert.True(t, snapshot.Days[1].Closed)
	assert.EqualValues(t, 1, atomic.LoadInt64(hits))

	cached, err := mr.Get(availabilityCacheKey)
	require.NoError(t, err)
	var stored AvailabilitySnapshot
	require.NoError(t, json.Unmarshal([]byte(cached), &stored))
	assert.Len(t, stored.Days, 2)
}

func TestGetSnapshot_CacheHitSkipsFetch(t *testing.T) {
	svc, mr, hits := newAvailabilityFixture(t, feedHandler(nil))

	seeded := AvailabilitySnapshot{
		FetchedAt: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		Days:      []AvailabilityDay{{Date: "2026-06-01", RoomsOpen: 5}},
	}
	payload, err := json.Marshal(seeded)
	require.NoError(t, err)
	require.NoError(t, mr.Set(availabilityCacheKey, string(payload)))

	snapshot, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Days, 1)
	assert.Equal(t, 5, snapshot.Days[0].RoomsOpen)
	assert.EqualValues(t, 0, atomic.LoadInt64(hits))
}

func TestGetSnapshot_CorruptCacheRefetches(t *testing.T) {
	days := []AvailabilityDay{{Date: "2026-06-03", RoomsOpen: 2}}
	svc, mr, hits := newAvailabilityFixture(t, feedHandler(days))

	require.NoError(t, mr.Set(availabilityCacheKey, "{not json"))

	snapshot, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Days, 1)
	assert.EqualValues(t, 1, atomic.LoadInt64(hits))

	// Fresh fetch overwrites the corrupt entry.
	cached, err := mr.Get(availabilityCacheKey)
	require.NoError(t, err)
	var stored AvailabilitySnapshot
	assert.NoError(t, json.Unmarshal([]byte(cached), &stored))
}

func TestGetSnapshot_UpstreamError(t *testing.T) {
	svc, _, _ := newAvailabilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.GetSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrAvailabilityUnavailable)
}

func TestGetSnapshot_MalformedFeed(t *testing.T) {
	svc, _, _ := newAvailabilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	})

	_, err := svc.GetSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrAvailabilityUnavailable)
}

func TestInvalidate(t *testing.T) {
	svc, mr, _ := newAvailabilityFixture(t, feedHandler(nil))

	require.NoError(t, mr.Set(availabilityCacheKey, "{}"))
	require.NoError(t, svc.Invalidate(context.Background()))
	assert.False(t, mr.Exists(availabilityCacheKey))
}

func TestGetSnapshot_NilRedisFetchesDirect(t *testing.T) {
	days := []AvailabilityDay{{Date: "2026-06-04", RoomsOpen: 1}}
	server := httptest.NewServer(feedHandler(days))
	t.Cleanup(server.Close)

	svc := NewAvailabilityService(nil, AvailabilityConfig{FeedURL: server.URL, Timeout: time.Second})
	snapshot, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Days, 1)
	assert.NoError(t, svc.Invalidate(context.Background()))
}
