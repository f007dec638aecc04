package utils

import (
	"context"
	"time"
)

// Sleeper blocks for the given duration.
type Sleeper func(time.Duration)

var sleep Sleeper = time.Sleep

// WaitWith blocks for d or until ctx is done. A nil sleeper means time.Sleep.
func WaitWith(ctx context.Context, d time.Duration, sleeper Sleeper) error {
	if d <= 0 {
		return ctx.Err()
	}
	if sleeper == nil {
		sleeper = sleep
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleeper(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
