package dedup

import (
	"context"
	"log"
	"math"
	"time"

	"deduplines/internal/errs"
	"deduplines/internal/sink"
)

// DefaultPollInterval is how often the interrupt check runs while a phase
// has unfinished tasks.
const DefaultPollInterval = 100 * time.Millisecond

// Options configures one run.
type Options struct {
	// Splits multiplies Threads into the bucket count. More splits mean
	// smaller buckets and a smaller per-task memory footprint.
	Splits int

	// Threads is the worker pool size for both phases.
	Threads int

	// FlushThreshold is the task-local output batch size in bytes.
	// <= 0 selects sink.DefaultFlushThreshold.
	FlushThreshold int

	// PollInterval is the interrupt-check cadence. <= 0 selects
	// DefaultPollInterval.
	PollInterval time.Duration

	// Interrupt is polled while a phase runs; returning true aborts the
	// operation cooperatively. nil means never interrupted.
	Interrupt func() bool

	// Logger receives progress lines when Verbose is set. nil uses
	// log.Default().
	Logger  *log.Logger
	Verbose bool
}

// NumParts returns Splits * Threads.
func (o Options) NumParts() int {
	return o.Splits * o.Threads
}

func (o Options) validate() error {
	if o.Splits <= 0 {
		return errs.Invalidf("number of splits must be positive, got %d", o.Splits)
	}
	if o.Threads <= 0 {
		return errs.Invalidf("number of threads must be positive, got %d", o.Threads)
	}
	if o.Splits > math.MaxInt32/o.Threads {
		return errs.Invalidf("splits*threads must not exceed %d, got %d*%d", math.MaxInt32, o.Splits, o.Threads)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.FlushThreshold <= 0 {
		o.FlushThreshold = sink.DefaultFlushThreshold
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Interrupt == nil {
		o.Interrupt = func() bool { return false }
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// ContextInterrupt adapts ctx to an Interrupt check: the run aborts once ctx
// is done.
func ContextInterrupt(ctx context.Context) func() bool {
	return func() bool { return ctx.Err() != nil }
}
