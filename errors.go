package expiringdict

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned when a cache is configured with a
// max length below one or a negative max age.
var ErrInvalidArgument = errors.New("expiringdict: invalid argument")

func validate(maxLen int, maxAge time.Duration) error {
	if maxLen < 1 {
		return fmt.Errorf("%w: max length must be at least 1, got %d", ErrInvalidArgument, maxLen)
	}
	if maxAge < 0 {
		return fmt.Errorf("%w: max age must not be negative, got %s", ErrInvalidArgument, maxAge)
	}
	return nil
}
