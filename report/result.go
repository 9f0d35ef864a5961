// Package report turns a finished crawl's Task registries into the
// external-facing formats (text, JSON, CSV, HTML).
package report

import (
	"fmt"
	"time"

	"github.com/yohayonyon/blc/task"
)

// Result is the sole artifact the engine hands to reporters: the two
// disjoint Task registries plus the crawl's summary counters. Every
// Task in Broken or FetchErrors has Status != NotVisited and a
// non-empty FirstFoundOn.
type Result struct {
	TargetURL       string
	Broken          []task.Task
	FetchErrors     []task.Task
	DiscoveredCount int
	ProcessedCount  int
	WorkersNum      int
	Elapsed         time.Duration
}

// FormatElapsed renders d as HH:MM:SS.ss, matching the crawl's
// human-facing status line and report header.
func FormatElapsed(d time.Duration) string {
	total := d.Seconds()
	hours := int(total) / 3600
	minutes := (int(total) % 3600) / 60
	seconds := total - float64(hours*3600+minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, seconds)
}
