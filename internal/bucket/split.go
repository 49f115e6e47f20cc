package bucket

import (
	"deduplines/internal/cancel"
	"deduplines/internal/lineio"
)

// SplitStats summarizes one Split call.
type SplitStats struct {
	Lines int64 // lines routed to partitions
	Bytes int64 // content bytes routed, delimiters excluded
}

// Split streams inputPath and appends every line, plus a trailing '\n', to
// the partition file of its bucket. All numParts partition files are created
// up front, so every bucket has a (possibly empty) file afterwards. Line
// order within a partition matches the input.
//
// The token is checked after every line. When it trips, Split stops and
// returns the stats so far with a nil error; what was routed is flushed.
// Any open, read or write failure aborts the split and is returned.
func Split(workDir, inputPath, tag string, numParts int, token *cancel.Token) (SplitStats, error) {
	var st SplitStats

	ws, err := lineio.CreateWriters(PartitionPaths(workDir, tag, numParts))
	if err != nil {
		return st, err
	}

	err = lineio.EachLine(inputPath, func(line []byte) error {
		if err := ws.WriteLine(Index(line, numParts), line); err != nil {
			return err
		}
		st.Lines++
		st.Bytes += int64(len(line))
		if token.Cancelled() {
			return lineio.Stop
		}
		return nil
	})
	if cerr := ws.Close(); err == nil {
		err = cerr
	}
	return st, err
}
