package sheet

import (
	"context"
	"fmt"
	"time"
)

// retryPolicy re-runs a failed download with exponential backoff
type retryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// downloadRetry applies to http(s) sources only. Tests shorten it.
var downloadRetry = retryPolicy{MaxRetries: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}

// temporary marks a failure worth another attempt
type temporary struct{ err error }

func (t temporary) Error() string { return t.err.Error() }
func (t temporary) Unwrap() error { return t.err }

// execute runs fn until it succeeds, returns a non-temporary error or runs out of retries
func (r retryPolicy) execute(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay(attempt)):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		t, ok := err.(temporary)
		if !ok {
			return err
		}
		lastErr = t.err
	}
	return fmt.Errorf("failed after %d attempts: %w", r.MaxRetries+1, lastErr)
}

func (r retryPolicy) delay(attempt int) time.Duration {
	d := r.BaseDelay * time.Duration(1<<uint(attempt-1))
	if d > r.MaxDelay {
		d = r.MaxDelay
	}
	return d
}
