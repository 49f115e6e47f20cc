// Package cancel provides the shared flag that every splitter and combiner
// task polls between lines.
package cancel

import "sync/atomic"

// Token is a one-way cancellation flag. The zero value is ready to use and
// not cancelled. Tokens must not be copied after first use.
type Token struct {
	stopped atomic.Bool
}

// Cancel sets the flag. Calling it more than once is harmless.
func (t *Token) Cancel() {
	t.stopped.Store(true)
}

// Cancelled reports whether Cancel has been called.
// A nil Token is never cancelled.
func (t *Token) Cancelled() bool {
	return t != nil && t.stopped.Load()
}
