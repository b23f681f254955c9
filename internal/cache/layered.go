package cache

import (
	"errors"
	"time"
)

// LayeredCache reads through an ordered list of tiers, fastest first.
// A hit in a slower tier is copied into every faster one.
type LayeredCache struct {
	tiers []Cache
}

// NewLayeredCache stacks tiers; nil tiers are skipped
func NewLayeredCache(tiers ...Cache) *LayeredCache {
	c := &LayeredCache{}
	for _, t := range tiers {
		if t != nil {
			c.tiers = append(c.tiers, t)
		}
	}
	return c
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, tier := range c.tiers {
		v, ok := tier.Get(key)
		if !ok {
			continue
		}
		for _, faster := range c.tiers[:i] {
			_ = faster.Set(key, v, 0)
		}
		return v, true
	}
	return nil, false
}

// Set writes to every tier and reports all failures
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Set(key, value, ttl))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Delete(key string) error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Delete(key))
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Clear() error {
	var errs []error
	for _, tier := range c.tiers {
		errs = append(errs, tier.Clear())
	}
	return errors.Join(errs...)
}
