package lineio

import (
	"bufio"
	"os"

	"deduplines/internal/errs"
)

// WriterBufSize is the per-handle buffer used for partition files. Many
// handles are open at once, so this stays small.
const WriterBufSize = 64 << 10 // 64 KiB

// WriterSet is a fixed set of buffered, append-only file handles addressed
// by index. It is owned by a single goroutine.
type WriterSet struct {
	paths []string
	files []*os.File
	bufs  []*bufio.Writer
}

// CreateWriters creates (truncating) one file per path. On failure the files
// created so far are closed and the error is returned.
func CreateWriters(paths []string) (*WriterSet, error) {
	ws := &WriterSet{
		paths: paths,
		files: make([]*os.File, 0, len(paths)),
		bufs:  make([]*bufio.Writer, 0, len(paths)),
	}
	for _, p := range paths {
		f, err := os.Create(p)
		if err != nil {
			ws.closeFiles()
			return nil, errs.IO("create", p, err)
		}
		ws.files = append(ws.files, f)
		ws.bufs = append(ws.bufs, bufio.NewWriterSize(f, WriterBufSize))
	}
	return ws, nil
}

// Len returns the number of handles.
func (ws *WriterSet) Len() int { return len(ws.bufs) }

// WriteLine appends line and a trailing '\n' to handle i.
func (ws *WriterSet) WriteLine(i int, line []byte) error {
	w := ws.bufs[i]
	if _, err := w.Write(line); err != nil {
		return errs.IO("write", ws.paths[i], err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return errs.IO("write", ws.paths[i], err)
	}
	return nil
}

// Close flushes and closes every handle. All handles are closed even when
// one fails; the first failure is returned.
func (ws *WriterSet) Close() error {
	var first error
	for i, w := range ws.bufs {
		if err := w.Flush(); err != nil && first == nil {
			first = errs.IO("flush", ws.paths[i], err)
		}
	}
	for i, f := range ws.files {
		if err := f.Close(); err != nil && first == nil {
			first = errs.IO("close", ws.paths[i], err)
		}
	}
	ws.files = nil
	ws.bufs = nil
	return first
}

func (ws *WriterSet) closeFiles() {
	for _, f := range ws.files {
		_ = f.Close()
	}
	ws.files = nil
}
