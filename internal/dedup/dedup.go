// Package dedup drives the two-phase partition-and-combine operations.
//
// Phase one splits every input into per-bucket partition files inside a
// caller-owned working directory. Phase two runs one combine task per bucket
// on a work-stealing pool and appends results to a shared output sink. Each
// phase ends with a barrier, after which the ledger is drained: an interrupt
// wins over everything, otherwise the first recorded task failure is the
// operation's error. Output written before a failure is not rolled back.
package dedup

import (
	"fmt"
	"time"

	"deduplines/internal/bucket"
	"deduplines/internal/cancel"
	"deduplines/internal/combine"
	"deduplines/internal/errs"
	"deduplines/internal/ledger"
	"deduplines/internal/metrics"
	"deduplines/internal/pool"
	"deduplines/internal/sink"

	"github.com/dustin/go-humanize"
)

// Operation names used in logs and metrics.
const (
	OpAdded  = "added"
	OpUnique = "unique"
)

// Report summarizes a run. It is filled as far as the run got, also on error.
type Report struct {
	Partitions      int
	SplitLines      int64
	CombinedLines   int64 // lines read back from partitions in phase two
	WrittenLines    int64
	WrittenBytes    int64
	SplitDuration   time.Duration
	CombineDuration time.Duration
}

// splitTask is one input file to partition.
type splitTask struct {
	path string
	tag  string
}

// bucketTask is one bucket to combine. For added-lines paths holds the
// first and second partition; for unique-lines one partition per input.
type bucketTask struct {
	bucket int
	paths  []string
}

type run struct {
	op       string
	opts     Options
	workDir  string
	numParts int
	token    cancel.Token
	report   Report
}

func newRun(op, workDir, outputPath string, opts Options) (*run, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if workDir == "" {
		return nil, errs.Invalidf("working directory is required")
	}
	if outputPath == "" {
		return nil, errs.Invalidf("output path is required")
	}
	opts = opts.withDefaults()
	r := &run{op: op, opts: opts, workDir: workDir, numParts: opts.NumParts()}
	r.report.Partitions = r.numParts
	return r, nil
}

// ComputeAddedLines writes to outputPath every line of secondPath that does
// not appear in firstPath, preserving multiplicity and, within a bucket,
// order.
func ComputeAddedLines(workDir, firstPath, secondPath, outputPath string, opts Options) (Report, error) {
	r, err := newRun(OpAdded, workDir, outputPath, opts)
	if err != nil {
		return Report{}, err
	}

	if err := r.split([]splitTask{
		{path: firstPath, tag: bucket.TagFirst},
		{path: secondPath, tag: bucket.TagSecond},
	}); err != nil {
		return r.report, err
	}

	tasks := make([]bucketTask, r.numParts)
	for i := range tasks {
		tasks[i] = bucketTask{bucket: i, paths: []string{
			bucket.PartitionPath(workDir, bucket.TagFirst, i),
			bucket.PartitionPath(workDir, bucket.TagSecond, i),
		}}
	}
	err = r.combine(outputPath, tasks, func(t bucketTask, out *sink.Sink) (combine.Stats, error) {
		return combine.Added(t.paths[0], t.paths[1], out, r.opts.FlushThreshold, &r.token)
	})
	return r.report, err
}

// ComputeUniqueLines writes to outputPath every distinct line found in
// paths exactly once. Order is first-seen within a bucket and unspecified
// across buckets.
func ComputeUniqueLines(workDir string, paths []string, outputPath string, opts Options) (Report, error) {
	if len(paths) == 0 {
		return Report{}, errs.Invalidf("at least one input file is required")
	}
	r, err := newRun(OpUnique, workDir, outputPath, opts)
	if err != nil {
		return Report{}, err
	}

	splits := make([]splitTask, len(paths))
	for i, p := range paths {
		splits[i] = splitTask{path: p, tag: bucket.FileTag(i)}
	}
	if err := r.split(splits); err != nil {
		return r.report, err
	}

	tasks := make([]bucketTask, r.numParts)
	for b := range tasks {
		parts := make([]string, len(paths))
		for i := range paths {
			parts[i] = bucket.PartitionPath(workDir, bucket.FileTag(i), b)
		}
		tasks[b] = bucketTask{bucket: b, paths: parts}
	}
	err = r.combine(outputPath, tasks, func(t bucketTask, out *sink.Sink) (combine.Stats, error) {
		return combine.Unique(t.paths, out, r.opts.FlushThreshold, &r.token)
	})
	return r.report, err
}

func (r *run) split(tasks []splitTask) error {
	workers := min(r.opts.Threads, len(tasks))
	r.logf("dedup: op=%s phase=split inputs=%d partitions=%d workers=%d", r.op, len(tasks), r.numParts, workers)

	start := time.Now()
	sum, err := phase(r, tasks, workers, func(t splitTask) ledger.Result {
		st, err := bucket.Split(r.workDir, t.path, t.tag, r.numParts, &r.token)
		return ledger.Result{Task: "split:" + t.tag, Err: err, Lines: st.Lines}
	})
	r.report.SplitDuration = time.Since(start)
	r.report.SplitLines = sum.Lines

	metrics.RecordStep(r.op, "split", err, r.report.SplitDuration)
	metrics.RecordLines(r.op, "split", sum.Lines)
	r.logf("dedup: op=%s phase=split lines=%d failures=%d elapsed=%s", r.op, sum.Lines, sum.Failures, r.report.SplitDuration.Truncate(time.Millisecond))
	return err
}

func (r *run) combine(outputPath string, tasks []bucketTask, fn func(bucketTask, *sink.Sink) (combine.Stats, error)) error {
	out, err := sink.Create(outputPath)
	if err != nil {
		return err
	}
	r.logf("dedup: op=%s phase=combine buckets=%d workers=%d", r.op, len(tasks), r.opts.Threads)

	start := time.Now()
	sum, err := phase(r, tasks, r.opts.Threads, func(t bucketTask) ledger.Result {
		st, err := fn(t, out)
		return ledger.Result{Task: fmt.Sprintf("%s:%d", r.op, t.bucket), Err: err, Lines: st.LinesIn, Out: st.LinesOut}
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	r.report.CombineDuration = time.Since(start)
	r.report.CombinedLines = sum.Lines
	r.report.WrittenLines = sum.Out
	r.report.WrittenBytes = out.Bytes()

	metrics.RecordStep(r.op, "combine", err, r.report.CombineDuration)
	metrics.RecordLines(r.op, "written", sum.Out)
	r.logf("dedup: op=%s phase=combine written=%d bytes=%s failures=%d elapsed=%s",
		r.op, sum.Out, humanize.Bytes(uint64(r.report.WrittenBytes)), sum.Failures, r.report.CombineDuration.Truncate(time.Millisecond))
	return err
}

// phase runs tasks to completion, polling for interrupts in between, and
// reduces the ledger. An interrupt overrides any task failure.
func phase[T any](r *run, tasks []T, workers int, exec func(T) ledger.Result) (ledger.Summary, error) {
	var results ledger.Ledger
	p := pool.Start(tasks, workers, &results, exec)
	interrupted := r.watch(p)
	p.Wait()

	sum := ledger.Summarize(results.Drain())
	if interrupted {
		return sum, fmt.Errorf("dedup: %s: %w", r.op, errs.ErrInterrupted)
	}
	return sum, sum.Err
}

// watch checks for an interrupt once up front and then at every poll tick
// until the phase finishes. On interrupt it trips the token and returns
// true without waiting for workers to drain.
func (r *run) watch(p *pool.Phase) bool {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		if r.opts.Interrupt() {
			r.token.Cancel()
			r.logf("dedup: op=%s interrupted; waiting for workers to drain", r.op)
			return true
		}
		if p.Remaining() == 0 {
			return false
		}
		select {
		case <-p.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (r *run) logf(format string, args ...any) {
	if r.opts.Verbose {
		r.opts.Logger.Printf(format, args...)
	}
}
