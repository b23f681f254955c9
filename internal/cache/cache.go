package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// Cache stores opaque byte values under string keys with a per-entry TTL.
// A zero TTL means the implementation's default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from its parts
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "antiplagiat:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache selected by cfg. A disabled cache returns nil, nil.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Kind) {
	case "", "memory":
		return NewMemoryCache(cfg.TTL, 10*time.Minute), nil
	case "lru":
		c, err := NewLRUCache(cfg.Size, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}
		return c, nil
	case "disk":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("disk cache requires a directory")
		}
		return NewDiskCache(cfg.Dir, cfg.TTL), nil
	case "layered":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("layered cache requires a directory")
		}
		return NewLayeredCache(memoryTier(cfg), NewDiskCache(cfg.Dir, cfg.TTL)), nil
	default:
		return nil, fmt.Errorf("unknown cache kind: %s", cfg.Kind)
	}
}

// memoryTier is the front tier of a layered cache: bounded when a size is set
func memoryTier(cfg model.CacheConfig) Cache {
	if cfg.Size > 0 {
		if c, err := NewLRUCache(cfg.Size, cfg.TTL); err == nil {
			return c
		}
	}
	return NewMemoryCache(cfg.TTL, 10*time.Minute)
}
