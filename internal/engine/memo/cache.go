// Package memo provides invalidate-on-signal caches for resolved transform state.
package memo

import "sync"

// Entry is a cached resolution. Found is false for the "resolved to nothing"
// sentinel, which is itself a cached state.
type Entry[V any] struct {
	Value V
	Found bool
}

// Resolver computes the value for key. Returning found == false caches the sentinel.
// Returned errors are not cached.
type Resolver[V any] func(key string) (value V, found bool, err error)

// Observer is notified of cache lookups.
type Observer interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// Cache memoizes resolutions per key until InvalidateAll.
//
// Resolvers run outside the lock. Two concurrent misses on the same key may
// both resolve; the later write wins. Resolvers must therefore be idempotent.
type Cache[V any] struct {
	name     string
	observer Observer

	mu      sync.RWMutex
	entries map[string]Entry[V]
}

// New creates an empty cache. The name labels observer callbacks.
func New[V any](name string) *Cache[V] {
	return &Cache[V]{
		name:    name,
		entries: make(map[string]Entry[V]),
	}
}

// WithObserver attaches an observer for hit and miss notifications.
func (c *Cache[V]) WithObserver(o Observer) *Cache[V] {
	c.observer = o
	return c
}

// Name returns the cache label.
func (c *Cache[V]) Name() string {
	return c.name
}

// GetOrResolve returns the cached entry for key, resolving and storing it on a miss.
func (c *Cache[V]) GetOrResolve(key string, resolve Resolver[V]) (Entry[V], error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		if c.observer != nil {
			c.observer.CacheHit(c.name)
		}
		return entry, nil
	}

	if c.observer != nil {
		c.observer.CacheMiss(c.name)
	}

	value, found, err := resolve(key)
	if err != nil {
		return Entry[V]{}, err
	}

	entry = Entry[V]{Value: value, Found: found}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	return entry, nil
}

// Peek returns the cached entry without resolving.
func (c *Cache[V]) Peek(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Len returns the number of cached entries, sentinels included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// InvalidateAll drops every entry. Subsequent lookups resolve again.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}
