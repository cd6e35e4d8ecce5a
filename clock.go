package expiringdict

import "time"

// Clock tells the cache what time it is. Entry ages are measured against it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// realClock reads the wall clock. Readings carry a monotonic component, so
// ages computed between two readings are unaffected by wall clock jumps.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
