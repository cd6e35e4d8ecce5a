package expiringdict

import (
	"container/list"
	"time"
)

// orderedMap keeps entries in insertion order using a doubly-linked list
// alongside a lookup index. Front is the oldest entry, Back the newest.
type orderedMap[K comparable, V any] struct {
	order *list.List
	items map[K]*list.Element
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{
		order: list.New(),
		items: make(map[K]*list.Element),
	}
}

func (m *orderedMap[K, V]) get(key K) (*entry[K, V], bool) {
	elem, ok := m.items[key]
	if !ok {
		return nil, false
	}
	return elem.Value.(*entry[K, V]), true
}

// pushBack appends a new entry at the newest position.
// The caller must make sure key is not already present.
func (m *orderedMap[K, V]) pushBack(key K, value V, createdAt time.Time) {
	m.items[key] = m.order.PushBack(&entry[K, V]{
		key:       key,
		value:     value,
		createdAt: createdAt,
	})
}

func (m *orderedMap[K, V]) remove(key K) (*entry[K, V], bool) {
	elem, ok := m.items[key]
	if !ok {
		return nil, false
	}
	m.order.Remove(elem)
	delete(m.items, key)
	return elem.Value.(*entry[K, V]), true
}

// popOldest removes and returns the oldest entry.
func (m *orderedMap[K, V]) popOldest() (*entry[K, V], bool) {
	elem := m.order.Front()
	if elem == nil {
		return nil, false
	}
	ent := elem.Value.(*entry[K, V])
	m.order.Remove(elem)
	delete(m.items, ent.key)
	return ent, true
}

func (m *orderedMap[K, V]) len() int {
	return len(m.items)
}

// each visits entries from oldest to newest until fn returns false.
// fn may remove the entry it is visiting.
func (m *orderedMap[K, V]) each(fn func(*entry[K, V]) bool) {
	for elem := m.order.Front(); elem != nil; {
		next := elem.Next()
		if !fn(elem.Value.(*entry[K, V])) {
			return
		}
		elem = next
	}
}
