package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yohayonyon/blc/task"
)

func fastRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Multiplier: time.Millisecond, MinWait: time.Millisecond, MaxWait: time.Millisecond}
}

// UnboundedDepth stands in for the large MaxDepth value the engine
// substitutes when a crawl has no configured depth ceiling.
const UnboundedDepth = 1 << 30

func TestFetchSuccessReturnsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("<html></html>"))
		}
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL, MaxDepth: UnboundedDepth, RequestTimeout: 5 * time.Second}
	in := task.Seed(srv.URL + "/")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Task.Status != task.Visited {
		t.Fatalf("Status = %v, want Visited", res.Task.Status)
	}
	if res.Document == nil {
		t.Fatal("Document is nil, want a body")
	}
	body, _ := io.ReadAll(res.Document)
	_ = res.Document.Close()
	if string(body) != "<html></html>" {
		t.Fatalf("body = %q", body)
	}
}

func TestFetch404IsNoSuchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL, MaxDepth: UnboundedDepth, RequestTimeout: 5 * time.Second}
	in := task.Seed(srv.URL + "/missing")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Task.Status != task.NoSuchPage {
		t.Fatalf("Status = %v, want NoSuchPage", res.Task.Status)
	}
	if res.Document != nil {
		t.Fatal("Document should be nil for a 404")
	}
}

func TestFetchNonHTMLSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL, MaxDepth: UnboundedDepth, RequestTimeout: 5 * time.Second}
	in := task.Seed(srv.URL + "/logo.png")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Task.Status != task.Visited {
		t.Fatalf("Status = %v, want Visited", res.Task.Status)
	}
	if res.Document != nil {
		t.Fatal("Document should be nil for a non-HTML content type")
	}
}

func TestFetchOffScopeSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL + "/scope", MaxDepth: UnboundedDepth, RequestTimeout: 5 * time.Second}
	in := task.Seed(srv.URL + "/outside")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Document != nil {
		t.Fatal("Document should be nil for an out-of-scope URL")
	}
}

func TestFetchAtMaxDepthSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL, MaxDepth: 1, RequestTimeout: 5 * time.Second}
	in := task.Child(srv.URL+"/deep", 1, srv.URL+"/")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Document != nil {
		t.Fatal("Document should be nil for a task at max depth")
	}
	if res.Task.Status != task.Visited {
		t.Fatalf("Status = %v, want Visited", res.Task.Status)
	}
}

func TestFetchNonCrawlingDomainSkipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	host := hostOf(srv.URL + "/")
	cfg := Config{
		TargetURL:          srv.URL,
		MaxDepth:           UnboundedDepth,
		RequestTimeout:     5 * time.Second,
		NonCrawlingDomains: map[string]struct{}{host: {}},
	}
	in := task.Seed(srv.URL + "/")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Document != nil {
		t.Fatal("Document should be nil for a non-crawling domain")
	}
}

func TestFetchServerErrorRetriesThenClassifies(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := Config{TargetURL: srv.URL, MaxDepth: UnboundedDepth, RequestTimeout: 5 * time.Second}
	in := task.Seed(srv.URL + "/")
	res := Fetch(context.Background(), srv.Client(), in, cfg, fastRetryPolicy())

	if res.Task.Status != task.OtherError {
		t.Fatalf("Status = %v, want OtherError", res.Task.Status)
	}
	if attempts != fastRetryPolicy().MaxAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, fastRetryPolicy().MaxAttempts)
	}
}
