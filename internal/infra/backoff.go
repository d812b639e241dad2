package infra

import (
	"context"
	"time"
)

// Backoff computes retry delays that grow with the attempt number and are
// bounded above by Max. The growth is linear (Base multiplied by the attempt
// number), which keeps delays monotonically non-decreasing without the
// overshoot of exponential schedules.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the pause before the given retry attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base * time.Duration(attempt)
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// Sleep waits out the attempt's delay, or returns early with the context's
// error if it is cancelled first.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.Delay(attempt)):
		return nil
	}
}
