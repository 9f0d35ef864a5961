// Package extractor parses a fetched HTML document into child Tasks,
// classifying each discovered link as same-page, on-site, or
// off-site.
package extractor

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/yohayonyon/blc/task"
	"github.com/yohayonyon/blc/urlutil"
)

// Config carries the crawl-wide constants the extractor needs to
// classify a discovered link relative to the crawl's scope.
type Config struct {
	TargetURL string
	MaxDepth  int
}

// ExtractLinks parses body as HTML (with an iso-8859-1 input-encoding
// hint, matching the parser the system this was distilled from used)
// and returns one child Task per distinct anchor href, classified
// against current and cfg.
func ExtractLinks(body io.Reader, current task.Task, cfg Config) ([]task.Task, error) {
	decoded, err := charset.NewReaderLabel("iso-8859-1", body)
	if err != nil {
		return nil, fmt.Errorf("extractor: decode body of %s: %w", current.URL, err)
	}

	hrefs, err := rawHrefs(decoded)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse %s: %w", current.URL, err)
	}

	base, err := url.Parse(cfg.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse target URL %q: %w", cfg.TargetURL, err)
	}

	seen := make(map[string]struct{}, len(hrefs))
	var children []task.Task

	for _, href := range hrefs {
		resolved, err := resolveAgainst(base, href)
		if err != nil {
			continue
		}
		if !urlutil.IsHTTPScheme(resolved) {
			continue
		}

		canonical, err := urlutil.Canonicalize(resolved, cfg.TargetURL)
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}

		children = append(children, classify(canonical, current, cfg))
	}

	return children, nil
}

// classify assigns a child Task's depth per the three discovery
// cases. Same-page fragments and off-site links are pinned to
// cfg.MaxDepth so fetcher's depth filter HEAD-probes them without
// ever issuing the body GET that would expand the crawl frontier.
func classify(canonical string, current task.Task, cfg Config) task.Task {
	switch {
	case strings.HasPrefix(canonical, current.URL+"#"):
		return task.Child(canonical, cfg.MaxDepth, current.URL)
	case strings.HasPrefix(canonical, cfg.TargetURL):
		return task.Child(canonical, current.Depth+1, current.URL)
	default:
		return task.Child(canonical, cfg.MaxDepth, current.URL)
	}
}

func resolveAgainst(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// rawHrefs returns every href attribute value of an <a> tag in body,
// in document order, without resolving or filtering.
func rawHrefs(body io.Reader) ([]string, error) {
	tokenizer := html.NewTokenizer(body)
	var hrefs []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return hrefs, err
			}
			return hrefs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
	}
}
