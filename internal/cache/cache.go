package cache

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL cache. Expired entries stay readable through
// Stale until Cleanup drops them, so callers can serve old data when a
// refresh fails.
type Cache[V any] struct {
	mu     sync.RWMutex
	items  map[string]Entry[V]
	ttl    time.Duration
	grace  time.Duration
	now    func() time.Time
	hits   int
	misses int
}

// Entry stores value and the time it was written.
type Entry[V any] struct {
	Value     V
	Timestamp time.Time
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Keys   int `json:"keys"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	grace time.Duration
	now   func() time.Time
}

// WithStaleGrace keeps expired entries around for d after expiry.
func WithStaleGrace(d time.Duration) Option {
	return func(o *options) { o.grace = d }
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a new Cache whose entries are fresh for ttl.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		items: make(map[string]Entry[V]),
		ttl:   ttl,
		grace: o.grace,
		now:   o.now,
	}
}

// Get returns value and true if present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok || c.expired(entry) {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return entry.Value, true
}

// Stale returns whatever is stored under key, fresh or not. It does not
// touch the hit/miss counters.
func (c *Cache[V]) Stale(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[key]
	return entry.Value, ok
}

// Set inserts or updates key with a fresh timestamp.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = Entry[V]{Value: value, Timestamp: c.now()}
	c.mu.Unlock()
}

// Range calls fn for every stored entry until fn returns false.
// fn must not call back into the cache.
func (c *Cache[V]) Range(fn func(key string, value V) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for k, e := range c.items {
		if !fn(k, e.Value) {
			return
		}
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]Entry[V])
	c.mu.Unlock()
}

// Size returns current number of items.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	sz := len(c.items)
	c.mu.RUnlock()
	return sz
}

// Stats returns hit, miss and key counts.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Keys: len(c.items)}
}

// Cleanup removes entries that are past both their TTL and the stale grace.
// It returns the number of removed entries.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.items {
		if now.Sub(e.Timestamp) > c.ttl+c.grace {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) expired(e Entry[V]) bool {
	return c.now().Sub(e.Timestamp) >= c.ttl
}
