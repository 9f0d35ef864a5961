// Package engine wires DedupQueue, Fetcher, and Extractor into the
// concurrent worker pool that drives one crawl to quiescence.
package engine

import (
	"math"
	"time"

	"github.com/yohayonyon/blc/fetcher"
)

// UnboundedDepth is the Config.MaxDepth sentinel meaning no task is
// ever skipped for being "at max depth".
const UnboundedDepth = -1

// DefaultWorkersNum is chosen when Config.WorkersNum is EngineDefaultWorkers.
const DefaultWorkersNum = 25

// EngineDefaultWorkers is the Config.WorkersNum sentinel meaning the
// engine should choose DefaultWorkersNum.
const EngineDefaultWorkers = -1

// internalMaxDepth is substituted for UnboundedDepth before Config
// reaches fetcher/extractor, which both compare a Task's depth
// against a concrete ceiling.
const internalMaxDepth = math.MaxInt32

// bloomExpectedURLs and bloomFalsePositiveRate size the disk-backed
// seen-set New uses when Config.LargeCrawl is set: spec.md's
// large-crawl mode targets a 0.1% false-positive rate at 100k URLs.
const (
	bloomExpectedURLs      = 100_000
	bloomFalsePositiveRate = 0.001
)

// Config are the engine's constructor inputs, matching the crawl's
// external interface: a canonical target URL, a depth ceiling, a
// worker count, and a set of hosts to probe but never parse for
// links.
type Config struct {
	TargetURL          string
	MaxDepth           int
	WorkersNum         int
	NonCrawlingDomains map[string]struct{}
	UserAgent          string
	RequestTimeout     time.Duration
	RetryPolicy        fetcher.RetryPolicy
	InsecureTLS        bool
	RateLimit          float64 // requests/sec across the whole crawl; 0 disables the limiter
	MemoryLimitMB      int64   // soft heap limit for memory-pressure logging; 0 disables it
	LargeCrawl         bool    // use a disk-backed bloom seen-set instead of an in-memory map
}

// normalize applies the engine's constructor defaults, translating
// CLI-facing sentinels into the concrete values the rest of the
// package works with.
func (c Config) normalize() Config {
	if c.WorkersNum == EngineDefaultWorkers {
		c.WorkersNum = DefaultWorkersNum
	}
	if c.WorkersNum < 1 {
		c.WorkersNum = 1
	}
	if c.MaxDepth == UnboundedDepth {
		c.MaxDepth = internalMaxDepth
	}
	if c.UserAgent == "" {
		c.UserAgent = fetcher.DefaultUserAgent()
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.RetryPolicy.MaxAttempts == 0 {
		c.RetryPolicy = fetcher.DefaultRetryPolicy()
	}
	if c.NonCrawlingDomains == nil {
		c.NonCrawlingDomains = map[string]struct{}{}
	}
	return c
}
