package inventory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetrierFirstTrySuccess(t *testing.T) {
	t.Parallel()
	var delays []time.Duration
	r := newRetrier(3)
	r.sleep = recordingSleep(&delays)

	calls := 0
	err := r.run(context.Background(), func(n int) (time.Duration, error) {
		calls++
		return 0, nil
	})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if calls != 1 || len(delays) != 0 {
		t.Fatalf("calls = %d, sleeps = %d; want 1 call and no sleeps", calls, len(delays))
	}
}

func TestRetrierFailFast(t *testing.T) {
	t.Parallel()
	var delays []time.Duration
	r := newRetrier(3)
	r.sleep = recordingSleep(&delays)

	boom := errors.New("bad status")
	calls := 0
	err := r.run(context.Background(), func(n int) (time.Duration, error) {
		calls++
		return failFast, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if calls != 1 || len(delays) != 0 {
		t.Fatalf("calls = %d, sleeps = %d; want exactly one attempt", calls, len(delays))
	}
}

func TestRetrierExhaustion(t *testing.T) {
	t.Parallel()
	var delays []time.Duration
	r := newRetrier(3)
	r.sleep = recordingSleep(&delays)

	base := 60 * time.Millisecond
	boom := errors.New("rate limited")
	calls := 0
	err := r.run(context.Background(), func(n int) (time.Duration, error) {
		calls++
		return base << n, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	// No sleep after the final failed attempt.
	want := []time.Duration{base, 2 * base}
	if len(delays) != len(want) {
		t.Fatalf("sleeps = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("sleeps = %v, want %v", delays, want)
		}
	}
}

func TestRetrierSleepError(t *testing.T) {
	t.Parallel()
	r := newRetrier(3)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	err := r.run(context.Background(), func(n int) (time.Duration, error) {
		return time.Second, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
