package expiringdict

import (
	"context"

	"go.uber.org/zap"
)

type config[K comparable, V any] struct {
	clock    Clock
	logger   *zap.Logger
	loader   func(context.Context, K) (V, error)
	items    []Item[K, V]
	from     *Cache[K, V]
	onEvict  func(K, V)
	onExpire func(K, V)
	onHit    func(K, V)
	onMiss   func(K)
}

func defaultConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		clock:  realClock{},
		logger: zap.NewNop(),
	}
}

// Option configures a Cache.
type Option[K comparable, V any] func(*config[K, V])

// WithClock sets a custom clock for time operations.
// Useful for testing expiration without sleeping.
func WithClock[K comparable, V any](clk Clock) Option[K, V] {
	return func(c *config[K, V]) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the logger used for debug events. The default discards
// everything.
func WithLogger[K comparable, V any](l *zap.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithItems seeds the cache with items, oldest first. Each item is stamped
// with the clock's current time. Items beyond the max length evict the
// oldest ones, exactly like Set.
func WithItems[K comparable, V any](items ...Item[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.items = append(c.items, items...)
	}
}

// WithEntriesFrom copies the raw entries of src, stale ones included, keeping
// their original creation times and order. The new cache uses its own max
// length and max age. Entries from WithItems are inserted after these.
func WithEntriesFrom[K comparable, V any](src *Cache[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.from = src
	}
}

// WithLoader sets a function used by GetOrLoad on a miss.
func WithLoader[K comparable, V any](fn func(context.Context, K) (V, error)) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = fn
	}
}

// OnEvict sets a callback invoked when an entry is dropped to make room.
func OnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *config[K, V]) {
		c.onEvict = fn
	}
}

// OnExpire sets a callback invoked when a stale entry is removed on access.
func OnExpire[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *config[K, V]) {
		c.onExpire = fn
	}
}

// OnHit sets a callback invoked on cache hits.
func OnHit[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *config[K, V]) {
		c.onHit = fn
	}
}

// OnMiss sets a callback invoked on cache misses.
func OnMiss[K comparable, V any](fn func(K)) Option[K, V] {
	return func(c *config[K, V]) {
		c.onMiss = fn
	}
}
