package engine

import "github.com/yohayonyon/blc/task"

// CrawlEvent reports progress after a single Task finishes
// processing, for consumption by a live status line or TUI.
type CrawlEvent struct {
	URL        string
	Status     task.Status
	Processed  int
	Discovered int
	Broken     int
	FetchError int
}
