package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryLoopSucceedsOnFirstAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 4, Multiplier: time.Millisecond, MinWait: time.Millisecond, MaxWait: time.Millisecond}
	calls := 0
	result, err := retryLoop(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("retryLoop() error: %v", err)
	}
	if result != 42 || calls != 1 {
		t.Fatalf("retryLoop() = (%d, calls=%d), want (42, 1)", result, calls)
	}
}

func TestRetryLoopStopsOnNotFound(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 4, Multiplier: time.Millisecond, MinWait: time.Millisecond, MaxWait: time.Millisecond}
	calls := 0
	_, err := retryLoop(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, errNotFound
	})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("retryLoop() error = %v, want errNotFound", err)
	}
	if calls != 1 {
		t.Fatalf("retryLoop() made %d attempts for a 404, want 1", calls)
	}
}

func TestRetryLoopRetriesTransientError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Multiplier: time.Millisecond, MinWait: time.Millisecond, MaxWait: time.Millisecond}
	calls := 0
	transient := errors.New("connection reset")
	_, err := retryLoop(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("retryLoop() error = %v, want transient", err)
	}
	if calls != policy.MaxAttempts {
		t.Fatalf("retryLoop() made %d attempts, want %d", calls, policy.MaxAttempts)
	}
}

func TestRetryLoopSucceedsAfterRetry(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 4, Multiplier: time.Millisecond, MinWait: time.Millisecond, MaxWait: time.Millisecond}
	calls := 0
	result, err := retryLoop(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("temporary failure")
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("retryLoop() error: %v", err)
	}
	if result != 7 || calls != 3 {
		t.Fatalf("retryLoop() = (%d, calls=%d), want (7, 3)", result, calls)
	}
}

func TestRetryPolicyWaitClampedToBounds(t *testing.T) {
	policy := DefaultRetryPolicy()
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		w := policy.wait(attempt)
		if w < policy.MinWait || w > policy.MaxWait {
			t.Fatalf("wait(%d) = %v, want within [%v, %v]", attempt, w, policy.MinWait, policy.MaxWait)
		}
	}
}
