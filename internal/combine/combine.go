// Package combine performs the per-bucket set algebra of the second phase.
//
// Each function handles exactly one bucket: it loads the bucket's partition
// files into a single owned buffer, indexes that buffer with a zero-copy
// lineset.Set, and writes its result through a task-local sink.Batch. The
// buffer and set live only for the duration of the call.
package combine

import (
	"bytes"

	"deduplines/internal/cancel"
	"deduplines/internal/lineio"
	"deduplines/internal/lineset"
	"deduplines/internal/sink"
)

// Stats summarizes one bucket task.
type Stats struct {
	LinesIn  int64 // lines read from the partitions
	LinesOut int64 // lines handed to the sink
}

// Added writes every line of secondPath that does not occur in firstPath.
// firstPath is loaded fully; secondPath is streamed. Absent lines keep their
// multiplicity and their order from secondPath.
//
// The token is polled per line. When it trips, Added flushes the lines it
// has already decided and returns a nil error.
func Added(firstPath, secondPath string, out *sink.Sink, flushThreshold int, token *cancel.Token) (Stats, error) {
	var st Stats

	buf, err := lineio.LoadFile(nil, firstPath)
	if err != nil {
		return st, err
	}
	seen, complete := lineset.Build(buf, token.Cancelled)
	if !complete {
		return st, nil
	}

	batch := sink.NewBatch(out, flushThreshold)
	err = lineio.EachLine(secondPath, func(line []byte) error {
		st.LinesIn++
		if !seen.Contains(line) {
			if err := batch.AddLine(line); err != nil {
				return err
			}
		}
		if token.Cancelled() {
			return lineio.Stop
		}
		return nil
	})
	if ferr := batch.Flush(); err == nil {
		err = ferr
	}
	st.LinesOut = batch.Lines()
	return st, err
}

// Unique writes each distinct line found across paths exactly once, in
// first-seen order over the concatenation of the files.
//
// A '\n' is inserted between segments when a file does not end with one, so
// the last line of one file never merges with the first line of the next.
// Cancellation behaves as in Added.
func Unique(paths []string, out *sink.Sink, flushThreshold int, token *cancel.Token) (Stats, error) {
	var st Stats

	var total int64
	for _, p := range paths {
		n, err := lineio.FileSize(p)
		if err != nil {
			return st, err
		}
		total += n + 1
	}

	buf := make([]byte, 0, total)
	for _, p := range paths {
		if token.Cancelled() {
			return st, nil
		}
		var err error
		if buf, err = lineio.LoadFile(buf, p); err != nil {
			return st, err
		}
		if n := len(buf); n > 0 && buf[n-1] != '\n' {
			buf = append(buf, '\n')
		}
	}

	set, complete := lineset.Build(buf, token.Cancelled)
	if !complete {
		return st, nil
	}

	batch := sink.NewBatch(out, flushThreshold)
	var err error
	set.Each(func(line []byte) bool {
		if err = batch.AddLine(line); err != nil {
			return false
		}
		return !token.Cancelled()
	})
	if ferr := batch.Flush(); err == nil {
		err = ferr
	}
	st.LinesIn = int64(bytes.Count(buf, []byte{'\n'}))
	st.LinesOut = batch.Lines()
	return st, err
}
