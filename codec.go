package expiringdict

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// snapshot is the serialized form of a Cache. Entries are oldest first and
// include stale ones.
type snapshot[K comparable, V any] struct {
	MaxLen  int             `json:"max_len"`
	MaxAge  time.Duration   `json:"max_age"`
	Entries []RawItem[K, V] `json:"entries"`
}

// MarshalBinary encodes the configuration and every raw entry with gob.
func (c *Cache[K, V]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.snapshot()); err != nil {
		return nil, fmt.Errorf("encode cache: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the configuration and entries of c with those
// encoded by MarshalBinary. c may be a zero Cache.
func (c *Cache[K, V]) UnmarshalBinary(data []byte) error {
	var s snapshot[K, V]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode cache: %w", err)
	}
	return c.restore(s)
}

// MarshalJSON encodes the configuration and every raw entry as
// {"max_len":...,"max_age":...,"entries":[{"key":...,"value":...,"created_at":...}]}.
// max_age is in nanoseconds.
func (c *Cache[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.snapshot())
}

// UnmarshalJSON is the inverse of MarshalJSON. c may be a zero Cache.
func (c *Cache[K, V]) UnmarshalJSON(data []byte) error {
	var s snapshot[K, V]
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode cache: %w", err)
	}
	return c.restore(s)
}

func (c *Cache[K, V]) snapshot() snapshot[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := snapshot[K, V]{MaxLen: c.maxLen, MaxAge: c.maxAge}
	if c.data != nil {
		s.Entries = c.rawLocked()
	}
	return s
}

func (c *Cache[K, V]) restore(s snapshot[K, V]) error {
	if err := validate(s.MaxLen, s.MaxAge); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.clock == nil {
		c.cfg.clock = realClock{}
	}
	if c.cfg.logger == nil {
		c.cfg.logger = zap.NewNop()
	}

	c.maxLen = s.MaxLen
	c.maxAge = s.MaxAge
	c.data = newOrderedMap[K, V]()
	for _, raw := range s.Entries {
		c.setLocked(raw.Key, raw.Value, raw.CreatedAt, nil)
	}

	c.cfg.logger.Debug("cache restored",
		zap.Int("max_len", c.maxLen),
		zap.Duration("max_age", c.maxAge),
		zap.Int("entries", c.data.len()),
	)
	return nil
}
