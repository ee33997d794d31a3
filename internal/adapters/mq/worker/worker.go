// Package worker runs shot scoring on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
)

// Default pool configuration constants.
const (
	defaultInlineThreshold = 64 // batches at or below this size are scored on the caller goroutine
	jobBufferMultiplier    = 4
)

// Scorer computes an assessment for a shot.
type Scorer interface {
	Score(ev shot.Event) scoring.Assessment
}

// job is one shot of a batch. The worker writes the result into out and
// signals done.
type job struct {
	ev   shot.Event
	out  *scoring.Assessment
	done *sync.WaitGroup
}

// worker drains the shared job channel until the pool shuts down.
type worker struct {
	scorer Scorer
	jobs   <-chan job
	logger logger.Logger
}

func (w *worker) run(ctx context.Context, shutdown <-chan struct{}) {
	w.logger.Debug(ctx, "worker started")
	for {
		select {
		case <-shutdown:
			return
		case j := <-w.jobs:
			*j.out = w.scorer.Score(j.ev)
			j.done.Done()
		}
	}
}

// Pool scores batches across a fixed number of workers while preserving
// input order. Results are identical to scoring each shot sequentially.
type Pool struct {
	workers         []*worker
	scorer          Scorer
	jobs            chan job
	inlineThreshold int

	shutdown chan struct{}
	wg       sync.WaitGroup
	// state is read-held by every batch in flight, so Stop waits for them.
	state   sync.RWMutex
	started bool
	stopped bool

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Non-positive counts default
// to runtime.NumCPU().
func NewPool(workerCount int, scorer Scorer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:         make([]*worker, workerCount),
		scorer:          scorer,
		jobs:            make(chan job, workerCount*jobBufferMultiplier),
		inlineThreshold: defaultInlineThreshold,
		shutdown:        make(chan struct{}),
		logger:          logger.Get().Named("worker-pool"),
	}

	for _, opt := range opts {
		opt(p)
	}

	for i := range p.workers {
		p.workers[i] = &worker{
			scorer: scorer,
			jobs:   p.jobs,
			logger: p.logger.With(logger.String("worker", "worker-"+strconv.Itoa(i))),
		}
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches the workers. It is a no-op if the pool already started.
func (p *Pool) Start(ctx context.Context) {
	p.state.Lock()
	defer p.state.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run(ctx, p.shutdown)
		}(w)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop waits for in-flight batches, signals every worker to exit and waits
// for them. Later batches are scored on the caller goroutine.
func (p *Pool) Stop() {
	p.state.Lock()
	if !p.started || p.stopped {
		p.stopped = true
		p.state.Unlock()
		return
	}
	p.stopped = true
	close(p.shutdown)
	p.state.Unlock()

	p.wg.Wait()
	p.logger.Info(context.Background(), "worker pool stopped")
}

// ScoreBatch scores every shot and returns the assessments in input order.
// Small batches, or any batch on a pool that is not running, are scored on the
// calling goroutine. If ctx is cancelled mid-batch the error is returned once
// all submitted shots have finished.
func (p *Pool) ScoreBatch(ctx context.Context, evs []shot.Event) ([]scoring.Assessment, error) {
	out := make([]scoring.Assessment, len(evs))

	p.state.RLock()
	defer p.state.RUnlock()

	if len(evs) <= p.inlineThreshold || !p.started || p.stopped {
		for i, ev := range evs {
			out[i] = p.scorer.Score(ev)
		}
		return out, nil
	}

	var done sync.WaitGroup
	for i := range evs {
		done.Add(1)
		select {
		case p.jobs <- job{ev: evs[i], out: &out[i], done: &done}:
		case <-ctx.Done():
			done.Done()
			done.Wait()
			return nil, fmt.Errorf("score batch cancelled after %d of %d shots: %w", i, len(evs), ctx.Err())
		}
	}
	done.Wait()
	return out, nil
}
