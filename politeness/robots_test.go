package politeness_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yohayonyon/blc/politeness"
)

func robotsServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestWaitNoDelayReturnsImmediately(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /private/", http.StatusOK)
	defer srv.Close()

	checker := politeness.NewChecker(srv.Client())
	pageURL := fmt.Sprintf("%s/page", srv.URL)

	start := time.Now()
	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("Wait() took %v with no crawl-delay configured", elapsed)
	}
}

func TestWaitEnforcesCrawlDelay(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nCrawl-delay: 1", http.StatusOK)
	defer srv.Close()

	checker := politeness.NewChecker(srv.Client())
	pageURL := fmt.Sprintf("%s/page", srv.URL)

	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	start := time.Now()
	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("Wait() returned after %v, want >= ~1s crawl-delay", elapsed)
	}
}

func TestWaitSerializesConcurrentSameHostRequests(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nCrawl-delay: 1", http.StatusOK)
	defer srv.Close()

	checker := politeness.NewChecker(srv.Client())
	pageURL := fmt.Sprintf("%s/page", srv.URL)

	// Warm the robots cache and set an initial lastAccess so the two
	// concurrent Waits below race against the same starting point
	// instead of both observing a zero-value lastAccess.
	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("warmup Wait() error: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed []time.Time
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
				t.Errorf("Wait() error: %v", err)
				return
			}
			mu.Lock()
			completed = append(completed, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(completed) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(completed))
	}
	gap := completed[1].Sub(completed[0])
	if gap < 0 {
		gap = -gap
	}
	if gap < 900*time.Millisecond {
		t.Fatalf("concurrent same-host Waits completed %v apart, want >= ~1s crawl-delay", gap)
	}
}

func TestWait404AllowsAllNoDelay(t *testing.T) {
	srv := robotsServer(t, "", http.StatusNotFound)
	defer srv.Close()

	checker := politeness.NewChecker(srv.Client())
	pageURL := fmt.Sprintf("%s/page", srv.URL)

	start := time.Now()
	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("Wait() took %v for a 404 robots.txt", elapsed)
	}
}

func TestWait5xxFailsOpen(t *testing.T) {
	srv := robotsServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	checker := politeness.NewChecker(srv.Client())
	pageURL := fmt.Sprintf("%s/page", srv.URL)

	if err := checker.Wait(context.Background(), pageURL, "testbot"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
}

func TestHostOf(t *testing.T) {
	if got := politeness.HostOf("https://example.com:8080/page"); got != "example.com" {
		t.Fatalf("HostOf() = %q, want example.com", got)
	}
	if got := politeness.HostOf("not a url"); got != "not a url" {
		t.Fatalf("HostOf() fallback changed input: %q", got)
	}
}
