// Package politeness implements per-host crawl-delay accounting
// backed by robots.txt, fetched and cached on demand.
package politeness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// cachedRobots stores parsed robots.txt data with its fetch time.
// A nil Data means "treat this host as allow-all / no crawl-delay",
// recorded on any fetch or parse error so we don't keep hammering a
// host's robots.txt every request.
type cachedRobots struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// Checker fetches and caches robots.txt per host and enforces
// crawl-delay between consecutive requests to that host. It
// deliberately does not enforce Disallow rules: spec fidelity with
// the system this was distilled from keeps robots.txt parsing
// data-only, gating solely on crawl-delay. See DESIGN.md.
type Checker struct {
	client   *http.Client
	cacheTTL time.Duration

	robotsMu sync.Mutex
	robots   map[string]*cachedRobots

	hostLocks sync.Map // host string -> *hostState
}

// hostState is the per-host politeness clock, created lazily on
// first access so a crawl that touches 50,000 hosts does not pay for
// 50,000 locks up front.
type hostState struct {
	mu         sync.Mutex
	lastAccess time.Time
}

// NewChecker creates a Checker using client for robots.txt fetches.
func NewChecker(client *http.Client) *Checker {
	return &Checker{
		client:   client,
		cacheTTL: time.Hour,
		robots:   make(map[string]*cachedRobots),
	}
}

// Wait blocks, if necessary, until enough time has passed since the
// last request to pageURL's host to respect its robots.txt
// crawl-delay for userAgent. It holds the host's lock across the
// sleep itself, not just across reading lastAccess: two workers
// racing for the same host must serialize through the delay, not
// both compute the same wait against a stale lastAccess and fire
// together. The lock is released before returning, so it never spans
// the caller's subsequent HTTP request. robots.txt is fetched using
// the same scheme as pageURL.
func (c *Checker) Wait(ctx context.Context, pageURL, userAgent string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("politeness: parse %q: %w", pageURL, err)
	}

	state := c.hostStateFor(parsed.Host)
	delay := c.crawlDelay(ctx, parsed.Scheme, parsed.Host, userAgent)

	state.mu.Lock()
	defer state.mu.Unlock()

	if delay > 0 {
		wait := state.lastAccess.Add(delay).Sub(time.Now())
		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	state.lastAccess = time.Now()
	return nil
}

func (c *Checker) hostStateFor(host string) *hostState {
	if existing, ok := c.hostLocks.Load(host); ok {
		return existing.(*hostState)
	}
	fresh, _ := c.hostLocks.LoadOrStore(host, &hostState{})
	return fresh.(*hostState)
}

// crawlDelay returns the robots.txt Crawl-delay for userAgent on
// host, in whatever unit robots.txt specified (seconds), or zero if
// absent, unparsable, or the fetch failed (fail-open).
func (c *Checker) crawlDelay(ctx context.Context, scheme, host, userAgent string) time.Duration {
	data, err := c.robotsFor(ctx, scheme, host)
	if err != nil || data == nil {
		return 0
	}
	group := data.FindGroup(userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}

func (c *Checker) robotsFor(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	c.robotsMu.Lock()
	if cached, ok := c.robots[host]; ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.robotsMu.Unlock()
		return cached.data, nil
	}
	c.robotsMu.Unlock()

	data, err := c.fetchRobots(ctx, scheme, host)

	c.robotsMu.Lock()
	c.robots[host] = &cachedRobots{data: data, fetchedAt: time.Now()}
	c.robotsMu.Unlock()

	return data, err
}

func (c *Checker) fetchRobots(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("politeness: build robots.txt request for %s: %w", host, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("politeness: fetch robots.txt for %s: %w", host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("politeness: read robots.txt for %s: %w", host, err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return nil, nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("politeness: parse robots.txt for %s: %w", host, err)
	}
	return robots, nil
}

// HostOf extracts the bare host (no port) from a URL string, falling
// back to the raw input if it does not parse or has no host.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	return parsed.Hostname()
}
