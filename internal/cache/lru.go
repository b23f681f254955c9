package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is a size-bounded cache with per-entry TTL
type LRUCache struct {
	cache      *lru.Cache[string, lruEntry]
	defaultTTL time.Duration
	mu         sync.Mutex
	now        func() time.Time
}

type lruEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// NewLRUCache creates a cache holding at most size entries
func NewLRUCache(size int, defaultTTL time.Duration) (*LRUCache, error) {
	c, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c, defaultTTL: defaultTTL, now: time.Now}, nil
}

// Get retrieves a value; expired entries are removed and reported missing
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when full.
// A zero ttl uses the default TTL.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.cache.Add(key, lruEntry{value: value, expiresAt: expiresAt})
	return nil
}

// Delete removes a value
func (c *LRUCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key)
	return nil
}

// Clear removes all values
func (c *LRUCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
	return nil
}

// Len returns the number of entries, expired ones included
func (c *LRUCache) Len() int {
	return c.cache.Len()
}
