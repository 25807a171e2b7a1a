package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Remote backends are pinged dialAttempts times, waiting dialDelay after the
// first failure and doubling the wait after each later one.
var (
	dialAttempts = 3
	dialDelay    = time.Second
)

// dial pings a freshly created client until it answers. Every failure is
// reported as ErrUnavailable naming backend; the last one is returned.
func dial(ctx context.Context, backend string, ping func(context.Context) error) error {
	delay := dialDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= dialAttempts {
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, backend, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
