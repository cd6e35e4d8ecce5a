package expiringdict

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// GetOrLoad returns the fresh value for key, calling the loader configured
// with WithLoader on a miss and storing its result with Set. Concurrent
// misses for the same key share one loader call. Loader errors are returned
// as is and nothing is stored.
//
// Without a loader GetOrLoad behaves like Get and returns the zero value and
// a nil error on a miss.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	var zero V

	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.cfg.loader == nil {
		return zero, nil
	}

	res, err, shared := c.loading.Do(flightKey(key), func() (any, error) {
		v, err := c.cfg.loader(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		c.cfg.logger.Warn("loader failed", zap.Any("key", key), zap.Error(err))
		return zero, err
	}
	if shared {
		c.cfg.logger.Debug("loader result shared", zap.Any("key", key))
	}

	// a nil interface V comes back as a nil any
	v, _ := res.(V)
	return v, nil
}

// flightKey renders key for singleflight.Group, which only accepts strings.
// %#v keeps the type in the output so distinct keys stay distinct.
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%#v", key)
}
