package agromet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroclima/agromet-etl/internal/domain"
)

type stubCatalogFetcher struct {
	catalog domain.Catalog
	err     error
	calls   int
}

func (s *stubCatalogFetcher) FetchCatalog(_ context.Context) (domain.Catalog, error) {
	s.calls++
	return s.catalog, s.err
}

func cachedFetcher(inner CatalogFetcher, ttl time.Duration, clock clockwork.Clock) *CachedCatalogFetcher {
	return NewCachedCatalogFetcher(inner, ttl, clock, testMetrics())
}

func TestCachedCatalogFetcher_Hit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &stubCatalogFetcher{catalog: domain.NewCatalog([]domain.Station{{ID: "1", Name: "a"}})}
	cached := cachedFetcher(inner, time.Hour, clock)

	first, err := cached.FetchCatalog(context.Background())
	require.NoError(t, err)
	second, err := cached.FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Stations, second.Stations)
}

func TestCachedCatalogFetcher_ExpiryRefetches(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &stubCatalogFetcher{catalog: domain.NewCatalog([]domain.Station{{ID: "1", Name: "a"}})}
	cached := cachedFetcher(inner, time.Hour, clock)

	_, err := cached.FetchCatalog(context.Background())
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Minute)

	_, err = cached.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedCatalogFetcher_ErrorNotCached(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &stubCatalogFetcher{err: errors.New("boom")}
	cached := cachedFetcher(inner, time.Hour, clock)

	_, err := cached.FetchCatalog(context.Background())
	require.Error(t, err)
	_, err = cached.FetchCatalog(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedCatalogFetcher_EmptyCatalogNotCached(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &stubCatalogFetcher{catalog: domain.Catalog{}}
	cached := cachedFetcher(inner, time.Hour, clock)

	_, err := cached.FetchCatalog(context.Background())
	require.NoError(t, err)
	_, err = cached.FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache(2)
	stamp := time.Now()

	cache.put("a", cacheEntry{fetchedAt: stamp})
	cache.put("b", cacheEntry{fetchedAt: stamp})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", cacheEntry{fetchedAt: stamp})

	_, ok = cache.get("b")
	assert.False(t, ok)
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
