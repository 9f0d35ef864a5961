// Package fetcher performs the HEAD/GET probe pipeline for a single
// Task: politeness, redirect handling, content-type and scope
// filtering, and terminal-error classification.
package fetcher

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// userAgentTemplate has one %s hole for the OS component of a
// desktop-class User-Agent string, matching the table in spec.md's
// fetcher section.
const userAgentTemplate = "Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 BrokenLinkChecker/1.0"

// osComponent returns the OS token used in the User-Agent string for
// the current build platform. Go's runtime.GOOS buckets map onto the
// four OS families the original desktop-UA table distinguishes.
func osComponent() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows NT 10.0; Win64; x64"
	case "darwin":
		return "Macintosh; Intel Mac OS X 10_15_7"
	case "linux":
		return "X11; Linux x86_64"
	default:
		return "X11; Unknown OS"
	}
}

// DefaultUserAgent returns a desktop-class User-Agent string whose OS
// component matches the host platform this binary was built for.
func DefaultUserAgent() string {
	return fmt.Sprintf(userAgentTemplate, osComponent())
}

// Config controls how a Client fetches and classifies Tasks.
type Config struct {
	UserAgent          string
	RequestTimeout     time.Duration
	InsecureTLS        bool
	NonCrawlingDomains map[string]struct{}
	TargetURL          string
	MaxDepth           int
}

// NewClient builds a per-worker HTTP client. Each worker owns its own
// Client so connections are reused across the Tasks that worker
// processes, without sharing a transport between workers.
func NewClient(cfg Config) *http.Client {
	transport := &http.Transport{}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}
