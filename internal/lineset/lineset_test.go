package lineset

import (
	"fmt"
	"reflect"
	"testing"
)

func members(s *Set) []string {
	var out []string
	s.Each(func(line []byte) bool {
		out = append(out, string(line))
		return true
	})
	return out
}

func TestBuild_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	buf := []byte("b\na\nb\nc\na\n")
	s, complete := Build(buf, nil)
	if !complete {
		t.Fatalf("Build reported incomplete without stop")
	}
	if got, want := members(s), []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("members = %v; want %v", got, want)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d; want 3", s.Len())
	}
}

func TestBuild_EdgeShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		buf  string
		want []string
	}{
		{"empty buffer", "", nil},
		{"unterminated tail", "x\ny", []string{"x", "y"}},
		{"empty lines collapse", "\n\n\n", []string{""}},
		{"binary", "a\x00\n\x00a\na\x00\n", []string{"a\x00", "\x00a"}},
	}
	for _, tc := range tests {
		s, _ := Build([]byte(tc.buf), nil)
		if got := members(s); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: members = %#v; want %#v", tc.name, got, tc.want)
		}
	}
}

func TestContains_ByteEquality(t *testing.T) {
	t.Parallel()

	s, _ := Build([]byte("apple\nbanana\ncherry\n"), nil)
	for _, l := range []string{"apple", "banana", "cherry"} {
		if !s.Contains([]byte(l)) {
			t.Fatalf("Contains(%q) = false; want true", l)
		}
	}
	for _, l := range []string{"Apple", "banana\r", "", "cherr"} {
		if s.Contains([]byte(l)) {
			t.Fatalf("Contains(%q) = true; want false", l)
		}
	}
}

func TestAdd_ReportsNew(t *testing.T) {
	t.Parallel()

	buf := []byte("dupdup")
	s := New(buf, 0)
	if !s.Add(0, 3) {
		t.Fatalf("first Add = false; want true")
	}
	if s.Add(3, 6) {
		t.Fatalf("duplicate Add = true; want false")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d; want 1", s.Len())
	}
}

func TestBuild_StopPartial(t *testing.T) {
	t.Parallel()

	calls := 0
	s, complete := Build([]byte("a\nb\nc\n"), func() bool {
		calls++
		return calls > 2
	})
	if complete {
		t.Fatalf("Build complete = true; want false after stop")
	}
	if got, want := members(s), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("members = %v; want %v", got, want)
	}
}

func TestEach_EarlyExit(t *testing.T) {
	t.Parallel()

	s, _ := Build([]byte("1\n2\n3\n"), nil)
	var seen int
	s.Each(func([]byte) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Fatalf("Each visited %d; want 1", seen)
	}
}

func TestBuild_Many(t *testing.T) {
	t.Parallel()

	var buf []byte
	for i := 0; i < 5000; i++ {
		buf = fmt.Appendf(buf, "line%d\nline%d\n", i%1000, i%1000)
	}
	s, _ := Build(buf, nil)
	if s.Len() != 1000 {
		t.Fatalf("Len = %d; want 1000", s.Len())
	}
	for i := 0; i < 1000; i++ {
		if !s.Contains(fmt.Appendf(nil, "line%d", i)) {
			t.Fatalf("missing line%d", i)
		}
	}
}
