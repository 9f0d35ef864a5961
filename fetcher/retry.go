package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryPolicy bounds the HEAD/GET retry harness. The defaults mirror
// the original crawler's tenacity decorator: four attempts total,
// exponential backoff with multiplier 5, each wait clamped to
// [4s, 5s].
type RetryPolicy struct {
	MaxAttempts int
	Multiplier  time.Duration
	MinWait     time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy returns the policy spec.md's fetcher section
// specifies.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		Multiplier:  5 * time.Second,
		MinWait:     4 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// wait returns the backoff delay before attempt (1-indexed: attempt 2
// is the first retry): Multiplier before the first retry, doubling
// for each later one, clamped to [MinWait, MaxWait].
func (p RetryPolicy) wait(attempt int) time.Duration {
	d := p.Multiplier
	for n := 2; n < attempt && d < p.MaxWait; n++ {
		d *= 2
	}
	if d < p.MinWait {
		return p.MinWait
	}
	if d > p.MaxWait {
		return p.MaxWait
	}
	return d
}

// errNotFound is a sentinel used internally to signal a 404 without
// fabricating an *http.Response-shaped error; attempt propagates it
// up to the caller so 404 can still short-circuit retries.
var errNotFound = errors.New("fetcher: not found")

// shouldRetry reports whether attempt's failure is retryable. Every
// HTTP-layer error is retried except 404, which is terminal
// (retry_if_not_404 in the source this was distilled from).
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, errNotFound)
}

// retryLoop runs attempt up to policy.MaxAttempts times, backing off
// between attempts, stopping early on success or on a non-retryable
// error (404). It returns the last attempt's result.
func retryLoop[T any](ctx context.Context, policy RetryPolicy, attempt func(ctx context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for n := 1; n <= policy.MaxAttempts; n++ {
		result, err = attempt(ctx)
		if err == nil || !shouldRetry(err) {
			return result, unwrapNotFound(err)
		}
		if n == policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(policy.wait(n + 1)):
		}
	}
	return result, unwrapNotFound(err)
}

func unwrapNotFound(err error) error {
	if errors.Is(err, errNotFound) {
		return errNotFound
	}
	return err
}

// isTerminalHTTPError reports whether status is an HTTP-layer failure
// that fetch.go should turn into an error for the retry harness to
// inspect (anything outside 2xx/3xx, since redirects are followed
// automatically by the http.Client).
func isTerminalHTTPError(status int) bool {
	return status != 0 && (status < 200 || status >= 400) && status != http.StatusNotFound
}
