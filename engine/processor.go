package engine

import (
	"context"
	"net/http"

	"github.com/yohayonyon/blc/extractor"
	"github.com/yohayonyon/blc/fetcher"
	"github.com/yohayonyon/blc/politeness"
	"github.com/yohayonyon/blc/task"
)

// processor composes a Fetcher and Extractor for one worker. Each
// worker owns its own *http.Client (matching spec.md's "no sharing of
// the client across workers" requirement), but all workers share a
// single politeness.Checker: crawl-delay accounting is keyed by host
// across the whole crawl, not per worker.
type processor struct {
	client     *http.Client
	robots     *politeness.Checker
	fetchCfg   fetcher.Config
	extractCfg extractor.Config
	retry      fetcher.RetryPolicy
	userAgent  string
}

func newProcessor(cfg Config, robots *politeness.Checker) *processor {
	fetchCfg := fetcher.Config{
		UserAgent:          cfg.UserAgent,
		RequestTimeout:     cfg.RequestTimeout,
		InsecureTLS:        cfg.InsecureTLS,
		NonCrawlingDomains: cfg.NonCrawlingDomains,
		TargetURL:          cfg.TargetURL,
		MaxDepth:           cfg.MaxDepth,
	}
	return &processor{
		client:     fetcher.NewClient(fetchCfg),
		robots:     robots,
		fetchCfg:   fetchCfg,
		extractCfg: extractor.Config{TargetURL: cfg.TargetURL, MaxDepth: cfg.MaxDepth},
		retry:      cfg.RetryPolicy,
		userAgent:  cfg.UserAgent,
	}
}

// process fetches t politely, extracts its children if a document
// came back, and returns the stamped Task plus any children. It
// returns no error: a failed politeness wait is stamped OtherError,
// fetch failures are encoded in the returned Task's Status, and an
// extraction failure leaves the Task with no children.
func (p *processor) process(ctx context.Context, t task.Task) (task.Task, []task.Task) {
	if err := p.robots.Wait(ctx, t.URL, p.userAgent); err != nil {
		return t.WithStatus(task.OtherError, err.Error()), nil
	}

	res := fetcher.Fetch(ctx, p.client, t, p.fetchCfg, p.retry)
	if res.Document == nil {
		return res.Task, nil
	}
	defer func() { _ = res.Document.Close() }()

	children, err := extractor.ExtractLinks(res.Document, res.Task, p.extractCfg)
	if err != nil {
		return res.Task, nil
	}
	return res.Task, children
}
