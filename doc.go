// Package expiringdict provides an ordered, size-bounded, concurrency-safe
// map whose entries expire a fixed duration after they were written.
//
// # Overview
//
// A Cache keeps entries in insertion order. Setting a key, new or existing,
// moves it to the newest position. When a new key would exceed the max
// length, the oldest entry is evicted. Every entry shares one max age;
// entries older than that are treated as absent.
//
// There is no background sweep. Reads that observe a stale entry remove it:
// Get, GetWithAge, GetOrDefault, Contains, Pop, Items and Values. Keys, All,
// Len, TTL and ItemsWithTimestamp report raw state and never remove
// anything, so Len and Keys may include stale entries.
//
// # Basic Usage
//
//	cache, err := expiringdict.New[string, int](100, 10*time.Second)
//	if err != nil {
//		return err
//	}
//
//	cache.Set("key", 42)
//
//	if v, ok := cache.Get("key"); ok {
//		fmt.Println(v)
//	}
//
//	if left, ok := cache.TTL("key"); ok {
//		fmt.Println("fresh for", left)
//	}
//
// # Copying
//
// Seed a cache with items stamped now, or copy the raw entries of another
// cache with their original creation times. Both go through Set, so the
// new cache keeps only the newest entries that fit:
//
//	small, _ := expiringdict.New(10, time.Minute, expiringdict.WithEntriesFrom(big))
//
// # Serialization
//
// Cache implements encoding.BinaryMarshaler (gob) and json.Marshaler. Both
// keep the max length, the max age and every raw entry in order:
//
//	data, _ := cache.MarshalBinary()
//	restored := new(expiringdict.Cache[string, int])
//	err := restored.UnmarshalBinary(data)
//
// # Configuration Files
//
// LoadConfig reads max_len and max_age from TOML or YAML:
//
//	cfg, err := expiringdict.LoadConfig("cache.toml")
//	cache, err := expiringdict.NewFromConfig[string, int](cfg)
//
// # Testing
//
// Inject a custom clock to control time in tests:
//
//	type fakeClock struct{ now time.Time }
//	func (c *fakeClock) Now() time.Time { return c.now }
//
//	clock := &fakeClock{now: time.Now()}
//	cache, _ := expiringdict.New(10, time.Minute,
//		expiringdict.WithClock[string, int](clock),
//	)
//
//	cache.Set("key", 42)
//	clock.now = clock.now.Add(2 * time.Minute) // stale
//	_, ok := cache.Get("key")                 // ok == false
//
// # Thread Safety
//
// All Cache methods are safe for concurrent use. Each method holds the
// cache's sync.RWMutex for its whole duration, so every call is atomic, but
// separate calls are not: Contains followed by Set can race with another
// writer. Hooks run after the lock is released and may call the cache.
package expiringdict
