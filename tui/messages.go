package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yohayonyon/blc/engine"
	"github.com/yohayonyon/blc/report"
)

// CrawlProgressMsg reports progress for a single processed URL.
type CrawlProgressMsg struct {
	Processed  int
	Discovered int
	Broken     int
	FetchError int
	URL        string
}

// CrawlDoneMsg signals the crawl has completed.
type CrawlDoneMsg struct {
	Result *report.Result
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. When the channel closes, it returns a CrawlDoneMsg with nil Result
// (the actual result comes from startCrawl).
func waitForProgress(ch <-chan engine.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return CrawlDoneMsg{}
		}
		return CrawlProgressMsg{
			Processed:  evt.Processed,
			Discovered: evt.Discovered,
			Broken:     evt.Broken,
			FetchError: evt.FetchError,
			URL:        evt.URL,
		}
	}
}
