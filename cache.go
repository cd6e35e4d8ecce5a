package expiringdict

import (
	"iter"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is an insertion-ordered, size-bounded map whose entries expire a
// fixed duration after they were written.
//
// Expiration is lazy: stale entries are dropped when a read observes them.
// Keys, All, Len and ItemsWithTimestamp report raw state and never drop
// anything.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	data   *orderedMap[K, V]
	maxLen int
	maxAge time.Duration
	cfg    config[K, V]
	stats  Stats

	// single-flight for loader
	loading singleflight.Group
}

// New creates a Cache holding at most maxLen entries, each fresh for maxAge
// after it was set. It returns ErrInvalidArgument if maxLen is below one or
// maxAge is negative.
func New[K comparable, V any](maxLen int, maxAge time.Duration, opts ...Option[K, V]) (*Cache[K, V], error) {
	if err := validate(maxLen, maxAge); err != nil {
		return nil, err
	}

	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache[K, V]{
		data:   newOrderedMap[K, V](),
		maxLen: maxLen,
		maxAge: maxAge,
		cfg:    cfg,
	}

	var seed []RawItem[K, V]
	if cfg.from != nil {
		seed = cfg.from.ItemsWithTimestamp()
	}
	if len(cfg.items) > 0 {
		now := cfg.clock.Now()
		for _, it := range cfg.items {
			seed = append(seed, RawItem[K, V]{Key: it.Key, Value: it.Value, CreatedAt: now})
		}
	}
	for _, raw := range seed {
		c.setLocked(raw.Key, raw.Value, raw.CreatedAt, nil)
	}
	c.cfg.items = nil
	c.cfg.from = nil

	c.cfg.logger.Debug("cache created",
		zap.Int("max_len", maxLen),
		zap.Duration("max_age", maxAge),
		zap.Int("entries", c.data.len()),
	)
	return c, nil
}

// Clone returns a new Cache with the same max length, max age, clock,
// logger and raw entries. Hooks and the loader are not copied.
func (c *Cache[K, V]) Clone() *Cache[K, V] {
	c.mu.RLock()
	maxLen, maxAge := c.maxLen, c.maxAge
	clk, logger := c.cfg.clock, c.cfg.logger
	c.mu.RUnlock()

	// configuration already passed validation, so New cannot fail.
	clone, _ := New(maxLen, maxAge,
		WithClock[K, V](clk),
		WithLogger[K, V](logger),
		WithEntriesFrom(c),
	)
	return clone
}

// Get returns the value for key if it is present and fresh.
// A stale entry is removed.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, _, ok := c.GetWithAge(key)
	return v, ok
}

// GetWithAge is like Get but also returns how long ago the entry was set.
func (c *Cache[K, V]) GetWithAge(key K) (V, time.Duration, bool) {
	var n notices[K, V]

	c.mu.Lock()
	now := c.cfg.clock.Now()
	ent, ok := c.lookupLocked(key, now, &n)
	var (
		v   V
		age time.Duration
	)
	if ok {
		v, age = ent.value, ent.age(now)
		c.hitLocked(ent, &n)
	} else {
		c.missLocked(key, &n)
	}
	c.mu.Unlock()

	c.fire(&n)
	return v, age, ok
}

// GetOrDefault returns the value for key, or def if it is absent or stale.
func (c *Cache[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// GetOrDefaultWithAge returns the value for key and its age, or def and a
// zero age if it is absent or stale.
func (c *Cache[K, V]) GetOrDefaultWithAge(key K, def V) (V, time.Duration, bool) {
	if v, age, ok := c.GetWithAge(key); ok {
		return v, age, true
	}
	return def, 0, false
}

// Contains reports whether key is present and fresh.
// A stale entry is removed.
func (c *Cache[K, V]) Contains(key K) bool {
	var n notices[K, V]

	c.mu.Lock()
	_, ok := c.lookupLocked(key, c.cfg.clock.Now(), &n)
	c.mu.Unlock()

	c.fire(&n)
	return ok
}

// Set stores value under key stamped with the current time. The key moves
// to the newest position. If the cache is full and key is new, the oldest
// entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	var n notices[K, V]

	c.mu.Lock()
	c.setLocked(key, value, c.cfg.clock.Now(), &n)
	c.mu.Unlock()

	c.fire(&n)
}

// SetAt is like Set but stamps the entry with at instead of the current
// time. at is not checked against the clock.
func (c *Cache[K, V]) SetAt(key K, value V, at time.Time) {
	var n notices[K, V]

	c.mu.Lock()
	c.setLocked(key, value, at, &n)
	c.mu.Unlock()

	c.fire(&n)
}

// Pop removes key and returns its value if it was fresh.
func (c *Cache[K, V]) Pop(key K) (V, bool) {
	var (
		n  notices[K, V]
		v  V
		ok bool
	)

	c.mu.Lock()
	if ent, found := c.lookupLocked(key, c.cfg.clock.Now(), &n); found {
		c.data.remove(key)
		v, ok = ent.value, true
	}
	c.mu.Unlock()

	c.fire(&n)
	return v, ok
}

// PopOrDefault removes key and returns its value, or def if it was absent
// or stale.
func (c *Cache[K, V]) PopOrDefault(key K, def V) V {
	if v, ok := c.Pop(key); ok {
		return v
	}
	return def
}

// Delete removes key. Deleting a missing key is a no-op.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	c.data.remove(key)
	c.mu.Unlock()
}

// TTL returns how long key stays fresh. It returns false if key is absent
// or already stale. Unlike Get it never removes anything.
func (c *Cache[K, V]) TTL(key K) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ent, ok := c.data.get(key)
	if !ok {
		return 0, false
	}
	now := c.cfg.clock.Now()
	if ent.isStale(now, c.maxAge) {
		return 0, false
	}
	return c.maxAge - ent.age(now), true
}

// Items returns the fresh entries oldest first. Stale entries are removed.
func (c *Cache[K, V]) Items() []Item[K, V] {
	var n notices[K, V]

	c.mu.Lock()
	fresh := c.freshLocked(&n)
	c.mu.Unlock()

	c.fire(&n)

	items := make([]Item[K, V], len(fresh))
	for i, ent := range fresh {
		items[i] = Item[K, V]{Key: ent.key, Value: ent.value}
	}
	return items
}

// Values returns the fresh values oldest first. Stale entries are removed.
func (c *Cache[K, V]) Values() []V {
	var n notices[K, V]

	c.mu.Lock()
	fresh := c.freshLocked(&n)
	c.mu.Unlock()

	c.fire(&n)

	values := make([]V, len(fresh))
	for i, ent := range fresh {
		values[i] = ent.value
	}
	return values
}

// ItemsWithTimestamp returns every stored entry oldest first, stale ones
// included, with their creation times. Nothing is removed.
func (c *Cache[K, V]) ItemsWithTimestamp() []RawItem[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.rawLocked()
}

// Keys returns every stored key oldest first, stale ones included.
// Nothing is removed.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, c.data.len())
	c.data.each(func(ent *entry[K, V]) bool {
		keys = append(keys, ent.key)
		return true
	})
	return keys
}

// All iterates over a snapshot of the stored keys, like Keys.
func (c *Cache[K, V]) All() iter.Seq[K] {
	keys := c.Keys()
	return func(yield func(K) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Len returns the number of stored entries.
// May include stale entries that haven't been removed yet.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.data.len()
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = newOrderedMap[K, V]()
}

// MaxLen returns the maximum number of entries.
func (c *Cache[K, V]) MaxLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.maxLen
}

// MaxAge returns how long an entry stays fresh.
func (c *Cache[K, V]) MaxAge() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.maxAge
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K, V]) Stats() Snapshot {
	return c.stats.Snapshot()
}

// lookupLocked returns the entry for key if it is fresh, removing it if it
// is stale.
func (c *Cache[K, V]) lookupLocked(key K, now time.Time, n *notices[K, V]) (*entry[K, V], bool) {
	ent, ok := c.data.get(key)
	if !ok {
		return nil, false
	}
	if ent.isStale(now, c.maxAge) {
		c.data.remove(key)
		c.expiredLocked(ent, n)
		return nil, false
	}
	return ent, true
}

// freshLocked returns the fresh entries oldest first and removes stale ones.
func (c *Cache[K, V]) freshLocked(n *notices[K, V]) []*entry[K, V] {
	now := c.cfg.clock.Now()
	fresh := make([]*entry[K, V], 0, c.data.len())
	c.data.each(func(ent *entry[K, V]) bool {
		if ent.isStale(now, c.maxAge) {
			c.data.remove(ent.key)
			c.expiredLocked(ent, n)
			return true
		}
		fresh = append(fresh, ent)
		return true
	})
	return fresh
}

func (c *Cache[K, V]) rawLocked() []RawItem[K, V] {
	raw := make([]RawItem[K, V], 0, c.data.len())
	c.data.each(func(ent *entry[K, V]) bool {
		raw = append(raw, ent.raw())
		return true
	})
	return raw
}

// setLocked inserts the entry at the newest position. A nil n seeds the
// cache quietly: evictions are neither counted nor reported.
func (c *Cache[K, V]) setLocked(key K, value V, at time.Time, n *notices[K, V]) {
	if _, ok := c.data.remove(key); !ok {
		for c.data.len() >= c.maxLen {
			c.evictOldestLocked(n)
		}
	}
	c.data.pushBack(key, value, at)
}

func (c *Cache[K, V]) evictOldestLocked(n *notices[K, V]) {
	ent, ok := c.data.popOldest()
	if !ok || n == nil {
		return
	}
	c.stats.evict()
	c.cfg.logger.Debug("evicted oldest entry", zap.Any("key", ent.key), zap.Int("max_len", c.maxLen))
	if c.cfg.onEvict != nil {
		n.evicted = append(n.evicted, ent.raw())
	}
}

func (c *Cache[K, V]) expiredLocked(ent *entry[K, V], n *notices[K, V]) {
	c.stats.expire(1)
	c.cfg.logger.Debug("removed stale entry", zap.Any("key", ent.key), zap.Time("created_at", ent.createdAt))
	if c.cfg.onExpire != nil {
		n.expired = append(n.expired, ent.raw())
	}
}

func (c *Cache[K, V]) hitLocked(ent *entry[K, V], n *notices[K, V]) {
	c.stats.hit()
	if c.cfg.onHit != nil {
		n.hits = append(n.hits, ent.raw())
	}
}

func (c *Cache[K, V]) missLocked(key K, n *notices[K, V]) {
	c.stats.miss()
	if c.cfg.onMiss != nil {
		n.misses = append(n.misses, key)
	}
}

// notices collects hook invocations made while the lock is held so they can
// run after it is released. Hooks may therefore call back into the cache.
type notices[K comparable, V any] struct {
	evicted []RawItem[K, V]
	expired []RawItem[K, V]
	hits    []RawItem[K, V]
	misses  []K
}

func (c *Cache[K, V]) fire(n *notices[K, V]) {
	for _, it := range n.evicted {
		c.cfg.onEvict(it.Key, it.Value)
	}
	for _, it := range n.expired {
		c.cfg.onExpire(it.Key, it.Value)
	}
	for _, it := range n.hits {
		c.cfg.onHit(it.Key, it.Value)
	}
	for _, k := range n.misses {
		c.cfg.onMiss(k)
	}
}
