package datadog

import (
	"reflect"
	"testing"

	"deduplines/internal/metrics"
)

type call struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	calls   []call
	flushes int
}

func (f *fakeClient) Count(name string, value int64, tags []string, rate float64) error {
	f.calls = append(f.calls, call{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, rate float64) error {
	f.calls = append(f.calls, call{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Flush() error {
	f.flushes++
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend(empty) error = nil; want non-nil")
	}
}

func TestBackend_ForwardsWithTags(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := NewWithClient(fc)
	b.IncCounter(metrics.LinesTotal, 12.9, metrics.Labels{"op": "added", "kind": "written"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.5, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []call{
		{"count", metrics.LinesTotal, 12, []string{"kind:written", "op:added"}},
		{"histogram", metrics.StepDurationSeconds, 0.5, nil},
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls = %#v; want %#v", fc.calls, want)
	}
	if fc.flushes != 1 {
		t.Fatalf("flushes = %d; want 1", fc.flushes)
	}
}

func TestLabelsToTags_Empty(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v; want nil", got)
	}
}
