// Package ledger collects per-task outcomes for a phase.
package ledger

import (
	"fmt"
	"sync"
)

// Result is the outcome of one task.
type Result struct {
	Task  string // e.g. "split:first_" or "added:17"
	Err   error
	Lines int64 // lines consumed by the task
	Out   int64 // lines produced by the task
}

// Ledger is an append-only, mutex-guarded list of Results.
// The zero value is ready to use.
type Ledger struct {
	mu      sync.Mutex
	results []Result
}

// Record appends r.
func (l *Ledger) Record(r Result) {
	l.mu.Lock()
	l.results = append(l.results, r)
	l.mu.Unlock()
}

// Len returns the number of recorded results.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

// Drain returns every recorded Result in record order and empties the
// ledger.
func (l *Ledger) Drain() []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.results
	l.results = nil
	return out
}

// Summary is the reduction of a drained phase.
type Summary struct {
	Tasks    int
	Failures int
	Lines    int64
	Out      int64
	Err      error // first failure in record order, annotated with its task
}

// Summarize reduces results. Successes only contribute their counts.
func Summarize(results []Result) Summary {
	var s Summary
	s.Tasks = len(results)
	for _, r := range results {
		s.Lines += r.Lines
		s.Out += r.Out
		if r.Err == nil {
			continue
		}
		s.Failures++
		if s.Err == nil {
			s.Err = fmt.Errorf("%s: %w", r.Task, r.Err)
		}
	}
	return s
}
