package extractor_test

import (
	"strings"
	"testing"

	"github.com/yohayonyon/blc/extractor"
	"github.com/yohayonyon/blc/task"
)

func currentTask() task.Task {
	return task.Child("https://example.com/", 0, task.SeedSentinel)
}

func cfg() extractor.Config {
	return extractor.Config{TargetURL: "https://example.com/", MaxDepth: 5}
}

func TestExtractLinksOnSiteIncrementsDepth(t *testing.T) {
	html := `<a href="/about">About</a>`
	children, err := extractor.ExtractLinks(strings.NewReader(html), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
	if children[0].URL != "https://example.com/about" {
		t.Fatalf("URL = %q", children[0].URL)
	}
	if children[0].Depth != 1 {
		t.Fatalf("Depth = %d, want 1", children[0].Depth)
	}
	if children[0].FirstFoundOn != "https://example.com/" {
		t.Fatalf("FirstFoundOn = %q", children[0].FirstFoundOn)
	}
}

func TestExtractLinksOffSitePinnedToMaxDepth(t *testing.T) {
	html := `<a href="https://other.example/page">External</a>`
	children, err := extractor.ExtractLinks(strings.NewReader(html), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
	if children[0].Depth != cfg().MaxDepth {
		t.Fatalf("Depth = %d, want %d", children[0].Depth, cfg().MaxDepth)
	}
}

func TestExtractLinksSamePageFragmentPinnedToMaxDepth(t *testing.T) {
	cur := currentTask()
	html := `<a href="#section-2">Jump</a>`
	children, err := extractor.ExtractLinks(strings.NewReader(html), cur, cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
	if children[0].Depth != cfg().MaxDepth {
		t.Fatalf("Depth = %d, want %d (fragment must be HEAD-only)", children[0].Depth, cfg().MaxDepth)
	}
	if !strings.HasPrefix(children[0].URL, cur.URL+"#") {
		t.Fatalf("URL = %q, want prefix %q", children[0].URL, cur.URL+"#")
	}
}

func TestExtractLinksFiltersNonHTTPSchemes(t *testing.T) {
	html := `<a href="mailto:user@example.com">Email</a><a href="javascript:void(0)">JS</a>`
	children, err := extractor.ExtractLinks(strings.NewReader(html), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("len(children) = %d, want 0", len(children))
	}
}

func TestExtractLinksDeduplicatesWithinPage(t *testing.T) {
	html := `<a href="/page">1</a><a href="/page">2</a><a href="/page">3</a>`
	children, err := extractor.ExtractLinks(strings.NewReader(html), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
}

func TestExtractLinksEmptyInput(t *testing.T) {
	children, err := extractor.ExtractLinks(strings.NewReader(""), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("len(children) = %d, want 0", len(children))
	}
}

func TestExtractLinksMalformedHTML(t *testing.T) {
	html := `<a href="/unclosed">Unclosed`
	children, err := extractor.ExtractLinks(strings.NewReader(html), currentTask(), cfg())
	if err != nil {
		t.Fatalf("ExtractLinks() error: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
}
