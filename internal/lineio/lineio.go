// Package lineio holds the buffered line I/O shared by the splitter and the
// combiners: a streaming line iterator that tolerates lines longer than its
// read buffer, whole-file loading into a caller-owned buffer, and a set of
// buffered append-only writers used for partition files.
//
// Lines are opaque byte strings delimited by '\n'. The delimiter is never
// part of a line. A final line without a trailing delimiter is still a
// line; the empty tail after a final delimiter is not.
package lineio

import (
	"bufio"
	"errors"
	"io"
	"os"
	"slices"

	"deduplines/internal/errs"
)

const (
	// ReadBufSize is the bufio reader size used when streaming lines.
	ReadBufSize = 1 << 20 // 1 MiB

	// growStep is the minimum headroom added when a file grows while loading.
	growStep = 64 << 10
)

// Stop may be returned by a ForEachLine callback to end iteration early
// without reporting an error.
var Stop = errors.New("lineio: stop")

// ForEachLine calls fn for every line read from r. The slice passed to fn
// aliases internal buffers and is only valid until fn returns.
//
// Read errors are returned as-is; errors from fn (other than Stop) are
// returned unchanged so callers can tell the two apart with errors.As.
func ForEachLine(r io.Reader, fn func(line []byte) error) error {
	_, err := forEachLine(r, fn)
	return err
}

// forEachLine reports whether the returned error came from the reader.
func forEachLine(r io.Reader, fn func(line []byte) error) (readFailed bool, err error) {
	br := bufio.NewReaderSize(r, ReadBufSize)
	var carry []byte
	for {
		chunk, rerr := br.ReadSlice('\n')
		if rerr == bufio.ErrBufferFull {
			// Line longer than the buffer: accumulate and keep reading.
			carry = append(carry, chunk...)
			continue
		}
		if rerr == io.EOF {
			line := chunk
			if len(carry) > 0 {
				line = append(carry, chunk...)
			}
			if len(line) == 0 {
				return false, nil
			}
			return false, callLine(fn, line)
		}
		if rerr != nil {
			return true, rerr
		}

		line := chunk
		if len(carry) > 0 {
			carry = append(carry, chunk...)
			line = carry
		}
		err := fn(line[:len(line)-1])
		carry = carry[:0]
		if err != nil {
			if err == Stop {
				return false, nil
			}
			return false, err
		}
	}
}

func callLine(fn func([]byte) error, line []byte) error {
	if err := fn(line); err != nil && err != Stop {
		return err
	}
	return nil
}

// EachLine opens path and streams its lines to fn. Open and read failures are
// reported as *errs.IOError.
func EachLine(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.IO("open", path, err)
	}
	defer f.Close()
	AdviseSequential(f)

	readFailed, err := forEachLine(f, fn)
	if readFailed {
		return errs.IO("read", path, err)
	}
	return err
}

// LoadFile appends the full contents of path to buf and returns the grown
// slice. The buffer is grown once from the file size up front.
func LoadFile(buf []byte, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return buf, errs.IO("open", path, err)
	}
	defer f.Close()
	AdviseSequential(f)

	st, err := f.Stat()
	if err != nil {
		return buf, errs.IO("stat", path, err)
	}
	// +1 leaves room for a segment delimiter without a second grow.
	buf = slices.Grow(buf, int(st.Size())+1)
	for {
		if len(buf) == cap(buf) {
			buf = slices.Grow(buf, growStep)
		}
		n, rerr := f.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if rerr == io.EOF {
			return buf, nil
		}
		if rerr != nil {
			return buf, errs.IO("read", path, rerr)
		}
	}
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, errs.IO("stat", path, err)
	}
	return st.Size(), nil
}
