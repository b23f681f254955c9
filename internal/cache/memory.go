package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps search responses in process memory until their TTL runs out
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a cache whose expired items are swept every sweep interval
func NewMemoryCache(defaultTTL, sweep time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, sweep)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores a private copy of value. A zero ttl uses the default TTL.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of stored items, including expired ones not yet swept
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
