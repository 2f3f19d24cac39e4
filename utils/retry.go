package utils

import (
	"context"
	"time"
)

// Retry calls fn until it succeeds, returns a non-retryable error, or
// retries are exhausted. retries is the number of extra attempts after the
// first one. The parent context is checked before every retry.
func Retry(ctx context.Context, retries int, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == retries || !retryable(err) {
			return err
		}

		timer := time.NewTimer(RetryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

// RetryDelay is an exponential backoff starting at 200ms, capped at 5s.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 8 {
		return 5 * time.Second
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
