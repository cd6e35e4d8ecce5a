package expiringdict

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

func (s *CacheSuite) TestLoader() {
	loaded := 0
	c := s.newCache(10, time.Minute,
		WithLoader(func(_ context.Context, key string) (int, error) {
			loaded++
			return len(key), nil
		}),
	)

	v, err := c.GetOrLoad(context.Background(), "abc")
	s.Require().NoError(err)
	s.Equal(3, v)
	s.Equal(1, loaded)

	// second call should use cache
	v, err = c.GetOrLoad(context.Background(), "abc")
	s.Require().NoError(err)
	s.Equal(3, v)
	s.Equal(1, loaded, "loader should not be called again (cached)")

	// stale entries are reloaded
	s.clk.Advance(2 * time.Minute)
	_, err = c.GetOrLoad(context.Background(), "abc")
	s.Require().NoError(err)
	s.Equal(2, loaded)
}

func (s *CacheSuite) TestLoaderError() {
	testErr := errors.New("load failed")
	c := s.newCache(10, time.Minute,
		WithLoader(func(context.Context, string) (int, error) {
			return 0, testErr
		}),
	)

	_, err := c.GetOrLoad(context.Background(), "a")
	s.Require().ErrorIs(err, testErr)

	s.False(c.Contains("a"), "failed load should not cache")
}

func (s *CacheSuite) TestLoaderSingleFlight() {
	var loadCount atomic.Int32
	proceed := make(chan struct{})

	c, err := New(10, time.Minute,
		WithLoader(func(context.Context, string) (int, error) {
			loadCount.Add(1)
			<-proceed
			return 42, nil
		}),
	)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make([]int, 3)
	errs := make([]error, 3)

	for i := range 3 {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = c.GetOrLoad(context.Background(), "key")
		}(i)
	}

	// give goroutines time to start and coalesce on the same load call
	time.Sleep(10 * time.Millisecond)

	close(proceed)
	wg.Wait()

	s.Equal(int32(1), loadCount.Load(), "single-flight should coalesce loads")

	for i, err := range errs {
		s.NoError(err, "goroutine %d error", i)
		s.Equal(42, results[i], "goroutine %d result", i)
	}
}

func (s *CacheSuite) TestGetOrLoadWithoutLoader() {
	c := s.newCache(10, time.Minute)

	c.Set("a", 1)
	v, err := c.GetOrLoad(context.Background(), "a")
	s.Require().NoError(err)
	s.Equal(1, v)

	v, err = c.GetOrLoad(context.Background(), "b")
	s.Require().NoError(err)
	s.Zero(v)
}

func (s *CacheSuite) TestGetOrLoadNilInterface() {
	c, err := New(10, time.Minute,
		WithLoader(func(context.Context, string) (error, error) {
			return nil, nil
		}),
	)
	s.Require().NoError(err)

	v, err := c.GetOrLoad(context.Background(), "a")
	s.Require().NoError(err)
	s.Nil(v)
	s.True(c.Contains("a"))
}

func (s *CacheSuite) TestFlightKeyDistinguishesTypes() {
	s.NotEqual(flightKey[any](1), flightKey[any]("1"))
	s.Equal(flightKey("a"), flightKey("a"))
}
