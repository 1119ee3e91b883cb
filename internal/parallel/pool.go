// Package parallel implements ParallelCoordinator (spec §4.10): a
// diversified fixed-pool strategy that races N independent engines sharing
// one SharedState, and a work-stealing fork/join strategy that branches
// the search tree itself across a bounded worker pool below a fixed depth
// threshold.
//
// The worker pool here is a static, channel-backed pool: a buffered task
// channel, one goroutine per worker, and a sync.Once-guarded close that
// closes a shutdown channel and waits on a WaitGroup for at most
// shutdownTimeout. Submission to a saturated
// pool runs the task inline (caller-runs) rather than blocking, since
// fork/join's workers submit their own children and then wait on them — a
// purely-blocking submit could exhaust every worker goroutine in nested
// waits with no one left to dequeue the backlog. A dynamic scaling monitor
// and deadlock detector have no analog here — both solvers below fork a
// bounded, statically-sized tree of known depth, so there is no queue to
// scale against and no independent long-running goal to deadlock-detect
// (see DESIGN.md).
package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrPoolShutdown is returned by submit once close has been called.
var ErrPoolShutdown = errors.New("parallel: pool is shut down")

// shutdownTimeout is spec.md's "coordinator thread joins with one-minute
// cap": close() waits at most this long for in-flight tasks to finish
// before force-cancelling whatever is left.
const shutdownTimeout = time.Minute

// pool is a bounded, static worker pool executing fire-and-forget tasks.
type pool struct {
	tasks       chan func()
	wg          sync.WaitGroup
	shutdown    chan struct{}
	once        sync.Once
	forceCancel context.CancelFunc
}

// newPool starts workers goroutines (defaulting to GOMAXPROCS if workers
// is non-positive) draining a buffered task channel. forceCancel is called
// by close() if tasks are still running past shutdownTimeout, so callers
// should derive the context passed to submit/tasks from the same
// cancellable context whose CancelFunc is given here.
func newPool(workers int, forceCancel context.CancelFunc) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &pool{
		tasks:       make(chan func(), workers*4),
		shutdown:    make(chan struct{}),
		forceCancel: forceCancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if task != nil {
				task()
			}
		case <-p.shutdown:
			return
		}
	}
}

// submit enqueues a task if a slot is immediately free. If the channel is
// saturated it runs the task inline on the calling goroutine instead of
// blocking: RunForkJoin's workers submit their own child subtrees and then
// wg.Wait() for them, so if every worker were allowed to block waiting for
// a free slot, a deep enough fork could exhaust the whole pool and
// deadlock (every worker waiting on children that can never be dequeued
// because no worker is free to dequeue them). Running inline when
// saturated guarantees the fork tree always makes forward progress.
func (p *pool) submit(ctx context.Context, task func()) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdown:
		return ErrPoolShutdown
	default:
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		task()
		return nil
	}
}

// close shuts the pool down. It is the coordinator's only blocking wait
// (spec.md "coordinator thread joins with one-minute cap"): it gives
// in-flight tasks up to shutdownTimeout to finish on their own, and if
// any are still running past that, force-cancels them via forceCancel
// and returns without waiting further.
func (p *pool) close() {
	p.once.Do(func() {
		close(p.shutdown)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			if p.forceCancel != nil {
				p.forceCancel()
			}
		}
	})
}
