package predictor

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/observability"
)

// Predictor is anything that can fetch a prediction for a parameter map.
type Predictor interface {
	Predict(ctx context.Context, params domain.QueryParams) (domain.PredictionResponse, error)
}

// CachedPredictor wraps a Predictor with an in-memory LRU cache keyed by a
// hash of the canonical parameter string.
type CachedPredictor struct {
	inner   Predictor
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedPredictor creates a cache decorator around a predictor.
func NewCachedPredictor(inner Predictor, maxEntries int, metrics *observability.Metrics) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedPredictor) Predict(ctx context.Context, params domain.QueryParams) (domain.PredictionResponse, error) {
	key := cacheKey(params)
	if resp, ok := c.cache.get(key); ok {
		c.metrics.PredictorCache.WithLabelValues("hit").Inc()
		return resp, nil
	}
	c.metrics.PredictorCache.WithLabelValues("miss").Inc()

	resp, err := c.inner.Predict(ctx, params)
	if err != nil {
		return resp, err
	}
	// Only successful predictions are cached so upstream failures are retried.
	if resp.Status == domain.StatusSuccess {
		c.cache.put(key, resp)
	}
	return resp, nil
}

func cacheKey(params domain.QueryParams) uint64 {
	return xxhash.Sum64String(params.Canonical())
}

// lruCache is a simple thread-safe LRU cache for prediction responses.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[uint64]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   uint64
	value domain.PredictionResponse
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[uint64]*entry),
	}
}

func (c *lruCache) get(key uint64) (domain.PredictionResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.PredictionResponse{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key uint64, value domain.PredictionResponse) {
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

func (c *lruCache) size() int {
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
