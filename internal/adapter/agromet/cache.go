package agromet

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agroclima/agromet-etl/internal/domain"
	"github.com/agroclima/agromet-etl/internal/observability"
)

// CatalogFetcher fetches the flattened station catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (domain.Catalog, error)
}

// CachedCatalogFetcher wraps a CatalogFetcher with an in-memory LRU cache.
// The station catalog changes on the order of months, so watch-mode cycles
// reuse a cached copy until the TTL lapses instead of refetching every run.
type CachedCatalogFetcher struct {
	inner CatalogFetcher
	ttl   time.Duration
	clock clockwork.Clock

	metrics *observability.Metrics
	cache   *lruCache
}

// cacheKey identifies the single catalog endpoint. The LRU is sized for more
// entries so a future multi-source setup can share it.
const cacheKey = "catalog"

// NewCachedCatalogFetcher creates a cache decorator around a catalog fetcher.
func NewCachedCatalogFetcher(inner CatalogFetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedCatalogFetcher {
	return &CachedCatalogFetcher{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		cache:   newLRUCache(8),
	}
}

// FetchCatalog returns the cached catalog while it is fresh, refetching on a
// miss or after expiry. Only non-empty catalogs are cached so a transiently
// empty upstream response can be retried next cycle.
func (c *CachedCatalogFetcher) FetchCatalog(ctx context.Context) (domain.Catalog, error) {
	if cached, ok := c.cache.get(cacheKey); ok {
		if c.clock.Now().Sub(cached.fetchedAt) < c.ttl {
			c.metrics.CatalogCache.WithLabelValues("hit").Inc()
			return cached.catalog, nil
		}
		c.metrics.CatalogCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.CatalogCache.WithLabelValues("miss").Inc()
	}

	catalog, err := c.inner.FetchCatalog(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	if catalog.Len() > 0 {
		c.cache.put(cacheKey, cacheEntry{catalog: catalog, fetchedAt: c.clock.Now()})
	}
	return catalog, nil
}

type cacheEntry struct {
	catalog   domain.Catalog
	fetchedAt time.Time
}

// lruCache is a simple thread-safe LRU cache for catalog entries.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cacheEntry
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
