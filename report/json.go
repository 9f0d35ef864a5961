package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yohayonyon/blc/task"
)

// linkRecord is the JSON/CSV wire shape for a single reported Task.
// It exists so the encoding is stable even if task.Task gains fields
// that reports shouldn't surface.
type linkRecord struct {
	URL     string `json:"url"`
	Depth   int    `json:"depth"`
	FoundOn string `json:"first_found_on"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func toRecords(links []task.Task) []linkRecord {
	records := make([]linkRecord, len(links))
	for i, link := range links {
		records[i] = linkRecord{
			URL:     link.URL,
			Depth:   link.Depth,
			FoundOn: link.FirstFoundOn,
			Status:  link.Status.String(),
			Error:   link.Err,
		}
	}
	return records
}

// jsonReport is the document WriteJSON encodes: broken links,
// fetch errors, and the crawl's summary counters, all in one object
// so CI consumers don't have to reconstruct the totals themselves.
type jsonReport struct {
	TargetURL       string       `json:"target_url"`
	Broken          []linkRecord `json:"broken_links"`
	FetchErrors     []linkRecord `json:"fetch_errors"`
	DiscoveredCount int          `json:"discovered_count"`
	ProcessedCount  int          `json:"processed_count"`
	WorkersNum      int          `json:"workers_num"`
	ElapsedSeconds  float64      `json:"elapsed_seconds"`
}

// WriteJSON writes res as a formatted JSON object to w.
func WriteJSON(w io.Writer, res *Result) error {
	doc := jsonReport{
		TargetURL:       res.TargetURL,
		Broken:          toRecords(res.Broken),
		FetchErrors:     toRecords(res.FetchErrors),
		DiscoveredCount: res.DiscoveredCount,
		ProcessedCount:  res.ProcessedCount,
		WorkersNum:      res.WorkersNum,
		ElapsedSeconds:  res.Elapsed.Seconds(),
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
