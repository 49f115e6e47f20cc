// Package lineset implements zero-copy sets of lines over a single owned
// byte buffer.
//
// The buffer owns the bytes; a Set only records [off, end) spans into it and
// a hash index over those spans. The buffer must outlive the Set and must
// not be modified while the Set is in use. Members are kept in first-seen
// order, so the same structure serves both membership tests and
// order-preserving deduplication.
package lineset

import (
	"bytes"

	"github.com/zeebo/xxh3"
)

type span struct {
	off, end int
}

// Set is an insertion-ordered set of distinct lines borrowed from buf.
// It is not safe for concurrent mutation.
type Set struct {
	buf   []byte
	spans []span         // distinct members, first-seen order
	next  []int          // hash-chain link per member, -1 terminates
	heads map[uint64]int // xxh3 hash -> most recent member with that hash
}

// New returns an empty Set over buf with room for about hint members.
func New(buf []byte, hint int) *Set {
	if hint < 0 {
		hint = 0
	}
	return &Set{
		buf:   buf,
		spans: make([]span, 0, hint),
		next:  make([]int, 0, hint),
		heads: make(map[uint64]int, hint),
	}
}

// Add inserts buf[off:end]. It reports whether the line was new; a
// duplicate keeps the position of its first occurrence.
func (s *Set) Add(off, end int) bool {
	line := s.buf[off:end]
	h := xxh3.Hash(line)
	head, ok := s.heads[h]
	if ok && s.find(head, line) >= 0 {
		return false
	}
	if !ok {
		head = -1
	}
	s.spans = append(s.spans, span{off: off, end: end})
	s.next = append(s.next, head)
	s.heads[h] = len(s.spans) - 1
	return true
}

// Contains reports whether line is byte-equal to a member. line need not
// point into the Set's buffer.
func (s *Set) Contains(line []byte) bool {
	head, ok := s.heads[xxh3.Hash(line)]
	return ok && s.find(head, line) >= 0
}

func (s *Set) find(i int, line []byte) int {
	for ; i >= 0; i = s.next[i] {
		sp := s.spans[i]
		if bytes.Equal(s.buf[sp.off:sp.end], line) {
			return i
		}
	}
	return -1
}

// Len returns the number of distinct members.
func (s *Set) Len() int { return len(s.spans) }

// Each calls fn for every member in first-seen order until fn returns false.
// The slices alias the Set's buffer.
func (s *Set) Each(fn func(line []byte) bool) {
	for _, sp := range s.spans {
		if !fn(s.buf[sp.off:sp.end]) {
			return
		}
	}
}

// Build indexes every '\n'-delimited line of buf into a new Set. A final
// segment without a delimiter counts as a line. stop is polled once per
// line; when it returns true Build returns the partial Set and false.
func Build(buf []byte, stop func() bool) (*Set, bool) {
	s := New(buf, bytes.Count(buf, []byte{'\n'})+1)
	off := 0
	for off < len(buf) {
		if stop != nil && stop() {
			return s, false
		}
		i := bytes.IndexByte(buf[off:], '\n')
		if i < 0 {
			s.Add(off, len(buf))
			break
		}
		s.Add(off, off+i)
		off += i + 1
	}
	return s, true
}
