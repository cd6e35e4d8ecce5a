package expiringdict

import "time"

// Item is a key paired with a fresh value.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// RawItem is a stored entry together with its creation time.
// It may be stale.
type RawItem[K comparable, V any] struct {
	Key       K         `json:"key"`
	Value     V         `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	createdAt time.Time
}

func (e *entry[K, V]) age(now time.Time) time.Duration {
	return now.Sub(e.createdAt)
}

// isStale reports whether the entry is older than maxAge.
// An entry whose age equals maxAge is still fresh.
func (e *entry[K, V]) isStale(now time.Time, maxAge time.Duration) bool {
	return e.age(now) > maxAge
}

func (e *entry[K, V]) raw() RawItem[K, V] {
	return RawItem[K, V]{Key: e.key, Value: e.value, CreatedAt: e.createdAt}
}
