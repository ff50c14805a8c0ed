package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultJanitorInterval = time.Minute

// Item represents a cached item with expiration
type Item[V any] struct {
	Value      V
	Expiration int64
}

func (i Item[V]) expired(now int64) bool {
	return now > i.Expiration
}

// Cache is an in-memory cache with per-item expiration. A janitor goroutine
// removes expired items until Close is called.
type Cache[V any] struct {
	items map[string]Item[V]
	mu    sync.RWMutex

	// loads deduplica GetOrLoad concorrentes por chave
	loads singleflight.Group

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// New creates a new cache instance
func New[V any]() *Cache[V] {
	return NewWithInterval[V](defaultJanitorInterval)
}

// NewWithInterval creates a cache whose janitor runs every interval.
func NewWithInterval[V any](interval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]Item[V]),
		stop:  make(chan struct{}),
		now:   time.Now,
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.DeleteExpired()
			case <-c.stop:
				return
			}
		}
	}()

	return c
}

// Close stops the janitor. The cache stays usable.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Set adds an item to the cache with the given expiration duration
func (c *Cache[V]) Set(key string, value V, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item[V]{
		Value:      value,
		Expiration: c.now().Add(duration).UnixNano(),
	}
}

// Get retrieves an item from the cache
// Returns the item and a boolean indicating if the item was found
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	item, found := c.items[key]
	if !found || item.expired(c.now().UnixNano()) {
		return zero, false
	}
	return item.Value, true
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result for duration. Concurrent callers for the same key share one load.
// Errors are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, duration time.Duration, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, duration)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	val, _ := v.(V)
	return val, nil
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// DeleteExpired removes all expired items from the cache
func (c *Cache[V]) DeleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		}
	}
}

// Len counts items, expired ones included until the janitor runs.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]Item[V])
}
