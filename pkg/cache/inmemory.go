package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache interface {
	Set(key string, value interface{}, duration time.Duration)
	SetDefault(key string, value interface{})
	Get(key string) (interface{}, bool)
	Replace(key string, value interface{}, duration time.Duration) error
	Delete(key string)
	DeleteExpired()
	Items() map[string]interface{}
	OnEvicted(fn func(key string, value interface{}))
	Flush()
}

// DefaultExpiration selects the expiration the cache was created with.
const DefaultExpiration = cache.DefaultExpiration

type goCache struct {
	internal *cache.Cache
}

// NewCache returns a new Cache instance with default expiration and cleanup interval
func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &goCache{
		internal: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *goCache) Set(key string, value interface{}, duration time.Duration) {
	c.internal.Set(key, value, duration)
}

func (c *goCache) SetDefault(key string, value interface{}) {
	c.internal.SetDefault(key, value)
}

func (c *goCache) Get(key string) (interface{}, bool) {
	return c.internal.Get(key)
}

// Replace sets key only if it holds an unexpired entry.
func (c *goCache) Replace(key string, value interface{}, duration time.Duration) error {
	return c.internal.Replace(key, value, duration)
}

func (c *goCache) Delete(key string) {
	c.internal.Delete(key)
}

// DeleteExpired removes expired entries now instead of waiting for the
// janitor, calling OnEvicted for each.
func (c *goCache) DeleteExpired() {
	c.internal.DeleteExpired()
}

// Items returns the unexpired entries.
func (c *goCache) Items() map[string]interface{} {
	items := c.internal.Items()
	out := make(map[string]interface{}, len(items))
	for k, item := range items {
		out[k] = item.Object
	}
	return out
}

// OnEvicted registers fn for entries removed by Delete or by expiry cleanup.
// Flush does not trigger it.
func (c *goCache) OnEvicted(fn func(key string, value interface{})) {
	c.internal.OnEvicted(fn)
}

func (c *goCache) Flush() {
	c.internal.Flush()
}

// GetTyped fetches key from c and asserts its type.
func GetTyped[T any](c Cache, key string) (T, bool) {
	val, found := c.Get(key)
	if !found {
		var zero T
		return zero, false
	}
	typedVal, ok := val.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typedVal, true
}
