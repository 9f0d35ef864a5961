package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yohayonyon/blc/politeness"
	"github.com/yohayonyon/blc/queue"
	"github.com/yohayonyon/blc/report"
	"github.com/yohayonyon/blc/task"
	"github.com/yohayonyon/blc/urlutil"
)

// Engine wires DedupQueue, Fetcher, and Extractor into the worker
// pool and owns the cross-component state spec.md assigns to it:
// the broken/fetch-error registries and the processed counter.
type Engine struct {
	cfg        Config
	queue      *queue.DedupQueue[task.Task]
	robots     *politeness.Checker
	limiter    *rate.Limiter
	logger     *slog.Logger
	progressCh chan<- CrawlEvent

	brokenMu sync.Mutex
	broken   []task.Task

	fetchErrMu sync.Mutex
	fetchErr   []task.Task

	processed int64
}

// New builds an Engine for a single crawl of cfg.TargetURL.
// progressCh is optional; pass nil to disable progress events.
func New(cfg Config, logger *slog.Logger, progressCh chan<- CrawlEvent) (*Engine, error) {
	cfg = cfg.normalize()

	canonicalTarget, err := urlutil.Canonicalize(cfg.TargetURL, "")
	if err != nil {
		return nil, fmt.Errorf("engine: canonicalize target URL: %w", err)
	}
	cfg.TargetURL = canonicalTarget

	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	dedupQueue, err := newDedupQueue(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		queue:      dedupQueue,
		robots:     politeness.NewChecker(&http.Client{Timeout: 5 * time.Second}),
		limiter:    limiter,
		logger:     logger,
		progressCh: progressCh,
	}, nil
}

// newDedupQueue builds the queue with the seen-set backend cfg
// selects: the default in-memory map, or a disk-backed bloom filter
// when cfg.LargeCrawl asks for bounded memory on very large crawls.
func newDedupQueue(cfg Config) (*queue.DedupQueue[task.Task], error) {
	if !cfg.LargeCrawl {
		return queue.New[task.Task](), nil
	}
	seenSet, err := queue.NewBloomSeenSet(bloomExpectedURLs, bloomFalsePositiveRate)
	if err != nil {
		return nil, fmt.Errorf("engine: create bloom seen-set: %w", err)
	}
	return queue.WithSeenSet[task.Task](seenSet), nil
}

// Run drives the crawl to quiescence and returns its report.Result.
// It blocks until every admitted Task has been processed.
func (e *Engine) Run(ctx context.Context) (*report.Result, error) {
	start := time.Now()

	throttle := newMemoryThrottle(e.cfg.MemoryLimitMB, e.logger)
	throttleCtx, stopThrottle := context.WithCancel(ctx)
	defer stopThrottle()
	go throttle.run(throttleCtx, 5*time.Second)

	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < e.cfg.WorkersNum; i++ {
		proc := newProcessor(e.cfg, e.robots)
		group.Go(func() error {
			e.runWorkerLoop(groupCtx, proc)
			return nil
		})
	}

	seed := task.Seed(e.cfg.TargetURL)
	if err := e.queue.Put(seed); err != nil {
		return nil, fmt.Errorf("engine: seed queue: %w", err)
	}

	e.queue.AwaitQuiescence()
	e.queue.Shutdown()

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("engine: worker pool: %w", err)
	}
	if err := e.queue.Close(); err != nil {
		e.logger.Warn("closing seen-set backing store", "error", err)
	}

	e.brokenMu.Lock()
	broken := append([]task.Task(nil), e.broken...)
	e.brokenMu.Unlock()

	e.fetchErrMu.Lock()
	fetchErrors := append([]task.Task(nil), e.fetchErr...)
	e.fetchErrMu.Unlock()

	return &report.Result{
		TargetURL:       e.cfg.TargetURL,
		Broken:          broken,
		FetchErrors:     fetchErrors,
		DiscoveredCount: e.queue.Discovered(),
		ProcessedCount:  int(atomic.LoadInt64(&e.processed)),
		WorkersNum:      e.cfg.WorkersNum,
		Elapsed:         time.Since(start),
	}, nil
}

func (e *Engine) runWorkerLoop(ctx context.Context, p *processor) {
	runWorker(ctx, e.queue, p, e, e.limiter)
}

func (e *Engine) recordBroken(t task.Task) {
	e.brokenMu.Lock()
	e.broken = append(e.broken, t)
	e.brokenMu.Unlock()
}

func (e *Engine) recordFetchError(t task.Task) {
	e.fetchErrMu.Lock()
	e.fetchErr = append(e.fetchErr, t)
	e.fetchErrMu.Unlock()
}

func (e *Engine) brokenCount() int {
	e.brokenMu.Lock()
	defer e.brokenMu.Unlock()
	return len(e.broken)
}

func (e *Engine) fetchErrorCount() int {
	e.fetchErrMu.Lock()
	defer e.fetchErrMu.Unlock()
	return len(e.fetchErr)
}

func (e *Engine) emit(evt CrawlEvent) {
	if e.progressCh == nil {
		return
	}
	select {
	case e.progressCh <- evt:
	default:
	}
}
