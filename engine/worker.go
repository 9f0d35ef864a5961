package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/yohayonyon/blc/queue"
	"github.com/yohayonyon/blc/task"
)

// runWorker implements the loop from spec.md's WorkerPool section:
// take, process, enqueue children, mark done. It returns only when
// the queue reports shutdown. limiter is optional crawl-wide rate
// limiting, applied before each fetch as a resource safety valve
// distinct from per-host robots.txt politeness.
func runWorker(ctx context.Context, q *queue.DedupQueue[task.Task], p *processor, e *Engine, limiter *rate.Limiter) {
	for {
		t, ok := q.Take()
		if !ok {
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// ctx was canceled while waiting for a rate-limiter
				// slot: t is marked Done without counting toward
				// processed, so processed can undercount discovered
				// on a canceled run. Acceptable for a best-effort
				// shutdown path; a clean run never hits this branch.
				q.Done()
				continue
			}
		}

		stamped, children := p.process(ctx, t)

		if stamped.Status.IsBroken() {
			e.recordBroken(stamped)
		} else if stamped.Status == task.OtherError {
			e.recordFetchError(stamped)
		}

		for _, child := range children {
			_ = q.Put(child)
		}

		processed := atomic.AddInt64(&e.processed, 1)
		q.Done()

		e.emit(CrawlEvent{
			URL:        stamped.URL,
			Status:     stamped.Status,
			Processed:  int(processed),
			Discovered: q.Discovered(),
			Broken:     e.brokenCount(),
			FetchError: e.fetchErrorCount(),
		})
	}
}
