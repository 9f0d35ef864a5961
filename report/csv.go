package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/yohayonyon/blc/task"
)

// WriteCSV writes the broken links and fetch errors as CSV to w, one
// combined sheet distinguished by the "kind" column. A header row is
// always written, even when both registries are empty.
// Column order: kind, url, depth, status, error, first_found_on
func WriteCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)

	header := []string{"kind", "url", "depth", "status", "error", "first_found_on"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	if err := writeCSVRows(cw, "broken", res.Broken); err != nil {
		return err
	}
	if err := writeCSVRows(cw, "fetch_error", res.FetchErrors); err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func writeCSVRows(cw *csv.Writer, kind string, links []task.Task) error {
	for _, link := range links {
		record := []string{
			kind,
			link.URL,
			fmt.Sprintf("%d", link.Depth),
			link.Status.String(),
			link.Err,
			link.FirstFoundOn,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", link.URL, err)
		}
	}
	return nil
}
