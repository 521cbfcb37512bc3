package stealth

import (
	"context"
	"math/rand"
	"time"
)

// Jitter returns a random duration in [min, max]
func Jitter(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Wait pauses for a random duration in [min, max]. It returns early with
// the context's error when ctx is cancelled.
func Wait(ctx context.Context, min, max time.Duration) error {
	d := Jitter(min, max)
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
