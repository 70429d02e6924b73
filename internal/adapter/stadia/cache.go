package stadia

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

// CachedTileProvider wraps a TileProvider with an in-memory LRU cache.
// The basemap extent reuses tiles between the plain and overlaid renders,
// so repeated fetches of the same tile hit the cache.
type CachedTileProvider struct {
	inner   domain.TileProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedTileProvider creates a cache decorator around a tile provider.
func NewCachedTileProvider(inner domain.TileProvider, maxEntries int, metrics *observability.Metrics) *CachedTileProvider {
	return &CachedTileProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTileProvider) FetchTile(ctx context.Context, zoom, x, y int) (image.Image, error) {
	key := fmt.Sprintf("%d/%d/%d", zoom, x, y)
	if img, ok := c.cache.get(key); ok {
		c.metrics.TileCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	c.metrics.TileCache.WithLabelValues("miss").Inc()

	img, err := c.inner.FetchTile(ctx, zoom, x, y)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, img)
	return img, nil
}

// lruCache is a simple thread-safe LRU cache for decoded tiles.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value image.Image
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value image.Image) {
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
