package sink

// Batch is a task-local line buffer in front of a Sink. It is not safe for
// concurrent use; each task owns one.
type Batch struct {
	sink      *Sink
	threshold int
	buf       []byte
	lines     int64
}

// NewBatch returns a Batch that flushes to s once it holds at least
// threshold bytes. threshold <= 0 selects DefaultFlushThreshold.
func NewBatch(s *Sink, threshold int) *Batch {
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}
	return &Batch{sink: s, threshold: threshold}
}

// AddLine appends line and a '\n', flushing when the threshold is crossed.
func (b *Batch) AddLine(line []byte) error {
	b.buf = append(b.buf, line...)
	b.buf = append(b.buf, '\n')
	b.lines++
	if len(b.buf) >= b.threshold {
		return b.Flush()
	}
	return nil
}

// Flush hands everything buffered to the Sink and clears the buffer.
func (b *Batch) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	err := b.sink.Append(b.buf)
	b.buf = b.buf[:0]
	return err
}

// Lines returns the number of lines added so far.
func (b *Batch) Lines() int64 { return b.lines }
