package engine

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// throttleLevel indicates memory pressure severity, checked
// periodically against the crawl's soft memory limit.
type throttleLevel int

const (
	throttleNormal throttleLevel = iota
	throttleWarning
	throttleCritical
)

// memoryThrottle watches heap usage against a soft limit and logs
// when the crawl crosses into elevated or critical pressure. Unlike
// the teacher's MemoryWatcher, it carries no registered callback
// hook: a crawl has nothing safe to pause mid-flight short of
// refusing new Task admission, which would violate the termination
// guarantee in spec.md section 5, so this is observability only.
type memoryThrottle struct {
	mu         sync.Mutex
	limitBytes int64
	lastLevel  throttleLevel
	logger     *slog.Logger
}

// newMemoryThrottle creates a watcher with a soft limit in megabytes.
// A non-positive limit disables the Go runtime's soft memory limit
// and reports throttleNormal unconditionally.
func newMemoryThrottle(limitMB int64, logger *slog.Logger) *memoryThrottle {
	limitBytes := limitMB * 1024 * 1024
	if limitBytes > 0 {
		debug.SetMemoryLimit(limitBytes)
	}
	return &memoryThrottle{limitBytes: limitBytes, logger: logger}
}

func (m *memoryThrottle) check() {
	if m.limitBytes <= 0 {
		return
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usedPercent := float64(stats.HeapAlloc) / float64(m.limitBytes) * 100

	level := throttleNormal
	switch {
	case usedPercent >= 90:
		level = throttleCritical
	case usedPercent >= 75:
		level = throttleWarning
	}

	m.mu.Lock()
	changed := level != m.lastLevel
	m.lastLevel = level
	m.mu.Unlock()

	if !changed {
		return
	}
	switch level {
	case throttleCritical:
		m.logger.Warn("memory pressure critical", "heap_percent", usedPercent)
	case throttleWarning:
		m.logger.Info("memory pressure elevated", "heap_percent", usedPercent)
	case throttleNormal:
		m.logger.Info("memory pressure normal", "heap_percent", usedPercent)
	}
}

// run polls check on an interval until ctx is done.
func (m *memoryThrottle) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}
