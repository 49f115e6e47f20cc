// Package pool runs one phase of tasks on a fixed set of workers that steal
// from a shared deque.
//
// Every task is queued before the first worker starts. Each worker then
// steals until the deque is empty, runs the task, records its Result in the
// ledger and decrements the remaining counter. Stealing, rather than a
// static split, keeps workers busy when bucket sizes are skewed.
package pool

import (
	"sync/atomic"

	"deduplines/internal/ledger"

	"golang.org/x/sync/errgroup"
)

// Phase is a running set of tasks.
type Phase struct {
	remaining atomic.Int64
	g         errgroup.Group
	done      chan struct{}
}

// Start queues tasks, spawns workers goroutines and returns immediately.
// exec must not panic. workers must be positive.
func Start[T any](tasks []T, workers int, results *ledger.Ledger, exec func(T) ledger.Result) *Phase {
	var dq Deque[T]
	for _, t := range tasks {
		dq.Push(t)
	}

	p := &Phase{done: make(chan struct{})}
	p.remaining.Store(int64(len(tasks)))
	for w := 0; w < workers; w++ {
		p.g.Go(func() error {
			for {
				t, ok := dq.Steal()
				if !ok {
					return nil
				}
				results.Record(exec(t))
				p.remaining.Add(-1)
			}
		})
	}
	go func() {
		_ = p.g.Wait()
		close(p.done)
	}()
	return p
}

// Remaining returns the number of tasks not yet finished.
func (p *Phase) Remaining() int64 {
	return p.remaining.Load()
}

// Done is closed once every worker has exited.
func (p *Phase) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until every worker has exited.
func (p *Phase) Wait() {
	<-p.done
}

// Run starts a phase and waits for it.
func Run[T any](tasks []T, workers int, results *ledger.Ledger, exec func(T) ledger.Result) {
	Start(tasks, workers, results, exec).Wait()
}
