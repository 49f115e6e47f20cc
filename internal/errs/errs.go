// Package errs defines the error taxonomy shared by the splitter, combiners,
// sink and orchestrator.
//
// Three kinds of failure exist:
//
//   - I/O failures (ErrIO, carried by *IOError) are fatal to the owning task
//     only; sibling tasks keep running.
//   - Interrupts (ErrInterrupted) are fatal to the whole operation.
//   - Configuration errors (ErrInvalidConfig) are reported before any task
//     is spawned.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInterrupted   = errors.New("operation interrupted")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrIO            = errors.New("i/o failure")
)

// IOError records a failed filesystem operation on a single path.
type IOError struct {
	Op   string // open, create, read, write, flush, stat, close
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIO) true for every *IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// IO wraps err as an *IOError. It returns nil when err is nil.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// Invalidf returns an error wrapping ErrInvalidConfig.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// IsInterrupted reports whether err is, or wraps, ErrInterrupted.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}
