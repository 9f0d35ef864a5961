package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yohayonyon/blc/task"
)

// Result is the outcome of fetching one Task: a stamped Task plus an
// optional document body for the extractor. Document is non-nil only
// when the caller should read it and is responsible for closing it.
type Result struct {
	Task     task.Task
	Document io.ReadCloser
}

// attemptResult is what one HEAD(+GET) attempt produces before retry
// and classification are applied.
type attemptResult struct {
	doc                io.ReadCloser
	httpInsteadOfHTTPS bool
}

// Fetch performs the HEAD-then-conditional-GET pipeline for t,
// honoring retry policy, and returns a Task stamped with its terminal
// status (Visited on success, or a broken/error status).
// HTTPInsteadOfHTTPS does not suppress the returned Document: the
// caller continues processing the Task.
func Fetch(ctx context.Context, client *http.Client, t task.Task, cfg Config, policy RetryPolicy) Result {
	out, err := retryLoop(ctx, policy, func(attemptCtx context.Context) (attemptResult, error) {
		return attemptOnce(attemptCtx, client, t, cfg)
	})

	switch {
	case errors.Is(err, errNotFound):
		return Result{Task: t.WithStatus(task.NoSuchPage, "404 Not Found")}
	case err != nil:
		return Result{Task: t.WithStatus(Classify(err, 0), err.Error())}
	}

	stamped := t.WithStatus(task.Visited, "")
	if out.httpInsteadOfHTTPS {
		stamped.Status = task.HTTPInsteadOfHTTPS
	}
	return Result{Task: stamped, Document: out.doc}
}

func attemptOnce(ctx context.Context, client *http.Client, t task.Task, cfg Config) (attemptResult, error) {
	headResp, err := doRequest(ctx, client, http.MethodHead, t.URL, cfg.UserAgent)
	if err != nil {
		return attemptResult{}, err
	}
	defer func() { _ = headResp.Body.Close() }()

	if headResp.StatusCode == http.StatusNotFound {
		return attemptResult{}, errNotFound
	}
	if isTerminalHTTPError(headResp.StatusCode) {
		return attemptResult{}, fmt.Errorf("HEAD %s: status %d", t.URL, headResp.StatusCode)
	}

	result := attemptResult{
		httpInsteadOfHTTPS: strings.HasPrefix(t.URL, "http://") && headResp.Request.URL.Scheme == "https",
	}

	if !isHTMLContentType(headResp.Header.Get("Content-Type")) {
		return result, nil
	}
	if !strings.HasPrefix(t.URL, cfg.TargetURL) {
		return result, nil
	}
	if _, skip := cfg.NonCrawlingDomains[hostOf(t.URL)]; skip {
		return result, nil
	}
	if t.Depth >= cfg.MaxDepth {
		return result, nil
	}

	getResp, err := doRequest(ctx, client, http.MethodGet, t.URL, cfg.UserAgent)
	if err != nil {
		return attemptResult{}, err
	}
	if getResp.StatusCode == http.StatusNotFound {
		_ = getResp.Body.Close()
		return attemptResult{}, errNotFound
	}
	if isTerminalHTTPError(getResp.StatusCode) {
		_ = getResp.Body.Close()
		return attemptResult{}, fmt.Errorf("GET %s: status %d", t.URL, getResp.StatusCode)
	}

	result.doc = getResp.Body
	return result, nil
}

func doRequest(ctx context.Context, client *http.Client, method, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", method, rawURL, err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return client.Do(req)
}

func isHTMLContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(contentType, "text/html")
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
