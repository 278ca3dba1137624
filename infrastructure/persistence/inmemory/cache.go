package inmemory

import (
	"context"
	"time"

	"memoryhub/application/ports"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache held in process memory. Expired entries are never
// returned and are reclaimed by go-cache's janitor every cleanupInterval.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates an empty cache
func NewCache(cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

var _ ports.Cache = (*Cache)(nil)

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores a value in cache with TTL in seconds. A non-positive TTL keeps
// the entry until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	expiry := gocache.NoExpiration
	if ttl > 0 {
		expiry = time.Duration(ttl) * time.Second
	}
	c.store.Set(key, value, expiry)
	return nil
}

// Delete removes a value from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Clear removes all values from cache
func (c *Cache) Clear(ctx context.Context) error {
	c.store.Flush()
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// janitor runs
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
