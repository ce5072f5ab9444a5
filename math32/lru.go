package math32

import (
	"container/list"
	"sync"
)

// Cache is a generic LRU cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	ll       *list.List
	items    map[K]*list.Element
	mu       sync.Mutex
	hits     int64
	misses   int64
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hitRate"`
	Capacity int     `json:"capacity"`
	Size     int     `json:"size"`
}

// NewCache creates a new LRU cache, capacity must be greater than 0.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		panic("lru: capacity must be greater than 0")
	}
	return &Cache[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}
}

// Get returns the cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return
	}

	c.ll.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry[K, V]).value, true
}

// GetOrLoad returns the cached value or stores the result of load.
// load runs without the lock held, so concurrent misses may both load.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

// Put inserts or updates a value, evicting the least recently used one on overflow.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry[K, V]).value = value
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry[K, V]{key, value})
	if c.ll.Len() > c.capacity {
		if el := c.ll.Back(); el != nil {
			c.ll.Remove(el)
			delete(c.items, el.Value.(*cacheEntry[K, V]).key)
		}
	}
}

// Remove drops key from the cache.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of elements in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear empties the cache and resets its counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	clear(c.items)
	c.hits, c.misses = 0, 0
}

// Stats returns the current counters.
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CacheStats{Hits: c.hits, Misses: c.misses, Capacity: c.capacity, Size: c.ll.Len()}
	if total := c.hits + c.misses; total > 0 {
		st.HitRate = float64(c.hits) / float64(total)
	}
	return st
}
