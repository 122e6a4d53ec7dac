package inventory

import (
	"context"
	"time"
)

// failFast is the sentinel delay an attempt returns when its error must not
// be retried (bad status, malformed body).
const failFast time.Duration = -1

// retrier runs an attempt func up to maxAttempts times. The attempt decides
// its own fate: err == nil means done; a non-negative delay asks for a
// sleep-then-retry; failFast aborts immediately. Sleep is injectable so the
// backoff schedule can be asserted in tests without wall-clock waits.
type retrier struct {
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

func newRetrier(maxAttempts int) retrier {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return retrier{maxAttempts: maxAttempts, sleep: sleepCtx}
}

// run invokes attempt with a zero-based attempt index and returns the last
// error once retries are exhausted or an attempt declines to retry.
func (r retrier) run(ctx context.Context, attempt func(n int) (time.Duration, error)) error {
	var lastErr error
	for n := 0; n < r.maxAttempts; n++ {
		delay, err := attempt(n)
		if err == nil {
			return nil
		}
		lastErr = err
		if delay == failFast {
			return err
		}
		if n == r.maxAttempts-1 {
			break
		}
		if serr := r.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
