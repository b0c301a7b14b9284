package csvsource

import (
	"context"
	"sync"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

// Loader loads a cleaned station set for a source identity (a file path).
type Loader interface {
	Load(ctx context.Context, source string) (domain.StationSet, error)
}

// CachedSource wraps a Loader with an in-memory LRU cache keyed by source
// identity. Entries live until evicted or explicitly invalidated; the file is
// not re-read when it changes on disk.
type CachedSource struct {
	inner   Loader
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a loader. metrics may be nil.
func NewCachedSource(inner Loader, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Load returns a copy of the cached set for source, loading it on a miss.
// Failed loads are not cached.
func (c *CachedSource) Load(ctx context.Context, source string) (domain.StationSet, error) {
	if set, ok := c.cache.get(source); ok {
		c.record("hit")
		return set.Clone(), nil
	}
	c.record("miss")

	set, err := c.inner.Load(ctx, source)
	if err != nil {
		return domain.StationSet{}, err
	}
	c.cache.put(source, set.Clone())
	return set, nil
}

// Invalidate drops the cached set for source so the next Load re-reads it.
func (c *CachedSource) Invalidate(source string) {
	c.cache.delete(source)
}

// InvalidateAll empties the cache.
func (c *CachedSource) InvalidateAll() {
	c.cache.clear()
}

// Len reports the number of cached sources.
func (c *CachedSource) Len() int {
	return c.cache.len()
}

func (c *CachedSource) record(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.SourceCache.WithLabelValues(result).Inc()
}

// lruCache is a simple thread-safe LRU cache of station sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.StationSet
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.StationSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.StationSet{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.StationSet) {
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

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.remove(e)
}

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.head = nil
	c.tail = nil
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
