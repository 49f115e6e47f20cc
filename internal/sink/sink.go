// Package sink provides the single output file shared by all combiner tasks.
//
// Writers never touch the file directly. Each task accumulates complete
// lines in a local Batch and hands whole buffers to the Sink under its
// mutex, so the output only ever contains whole, newline-terminated lines
// even when the run fails or is interrupted part way.
package sink

import (
	"bufio"
	"os"
	"sync"

	"deduplines/internal/errs"
)

const (
	// WriteBufSize amortizes syscalls on the shared handle.
	WriteBufSize = 4 << 20 // 4 MiB

	// DefaultFlushThreshold is the local batch size that triggers a flush
	// to the Sink.
	DefaultFlushThreshold = 10 << 20 // 10 MiB
)

// Sink is a mutex-guarded, buffered, append-only output file.
type Sink struct {
	path string

	mu    sync.Mutex
	f     *os.File
	w     *bufio.Writer
	bytes int64
}

// Create truncates or creates path and returns a Sink writing to it.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.IO("create", path, err)
	}
	return &Sink{path: path, f: f, w: bufio.NewWriterSize(f, WriteBufSize)}, nil
}

// Append writes p as one unit. p must hold only complete lines.
func (s *Sink) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.w.Write(p)
	s.bytes += int64(n)
	if err != nil {
		return errs.IO("write", s.path, err)
	}
	return nil
}

// Bytes returns the number of bytes accepted so far.
func (s *Sink) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Close flushes buffered data and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	ferr := s.w.Flush()
	cerr := s.f.Close()
	s.f = nil
	if ferr != nil {
		return errs.IO("flush", s.path, ferr)
	}
	return errs.IO("close", s.path, cerr)
}
