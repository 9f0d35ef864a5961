package report

import (
	"fmt"
	"io"
)

// WriteText writes a human-readable summary of res to w: the broken
// links, then the fetch errors, each with its status and the page it
// was found on, followed by the target, worker count, elapsed time and
// a one-line count of everything the crawl touched.
func WriteText(w io.Writer, res *Result) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if len(res.Broken) == 0 {
		writef("No broken links found!\n")
	} else {
		writef("Broken Links:\n")
		for i, link := range res.Broken {
			writef("  URL: %s\n", link.URL)
			writef("  Status: %s\n", link.Status)
			if link.Err != "" {
				writef("  Error: %s\n", link.Err)
			}
			writef("  Found on: %s\n", link.FirstFoundOn)
			if i < len(res.Broken)-1 {
				writef("\n")
			}
		}
	}

	if len(res.FetchErrors) > 0 {
		writef("\nFetch Errors:\n")
		for i, link := range res.FetchErrors {
			writef("  URL: %s\n", link.URL)
			writef("  Status: %s\n", link.Status)
			writef("  Error: %s\n", link.Err)
			writef("  Found on: %s\n", link.FirstFoundOn)
			if i < len(res.FetchErrors)-1 {
				writef("\n")
			}
		}
	}

	writef(
		"\nTarget: %s\nWorkers: %d\nElapsed: %s\nDiscovered %d URLs, processed %d, found %d broken links and %d fetch errors\n",
		res.TargetURL, res.WorkersNum, FormatElapsed(res.Elapsed),
		res.DiscoveredCount, res.ProcessedCount, len(res.Broken), len(res.FetchErrors),
	)
}
