package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/your-org/vdl/internal/observability"
)

// Pool bounds how many fetches run at once and how long each may take.
type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewPool returns a pool running at most maxConcurrent fetches. maxConcurrent <= 0
// means no bound; timeout <= 0 means no per-fetch deadline.
func NewPool(maxConcurrent int, timeout time.Duration) *Pool {
	p := &Pool{timeout: timeout}
	if maxConcurrent > 0 {
		p.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return p
}

// Do waits for a free slot and runs fn under the pool's deadline. If ctx ends
// while waiting, fn is never called.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.sem != nil {
		observability.FetchesWaiting.Inc()
		err := p.sem.Acquire(ctx, 1)
		observability.FetchesWaiting.Dec()
		if err != nil {
			return fmt.Errorf("wait for fetch slot: %w", err)
		}
		defer p.sem.Release(1)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	observability.FetchesInFlight.Inc()
	defer observability.FetchesInFlight.Dec()

	return fn(ctx)
}
