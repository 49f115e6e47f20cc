package config

import (
	"fmt"
	"math"
	"net/url"
	"runtime"
	"strings"
	"time"

	"deduplines/internal/dedup"

	"github.com/dustin/go-humanize"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the option as it
// is spelled in the YAML file (e.g. "metrics.backend").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over c. It does not mutate c.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if c.Splits <= 0 {
		add(SeverityError, "splits", "must be positive, got %d", c.Splits)
	}
	if c.Threads < 0 {
		add(SeverityError, "threads", "must be zero (CPU count) or positive, got %d", c.Threads)
	}
	if c.Splits > 0 {
		if t := c.ThreadCount(); t > 0 && c.Splits > math.MaxInt32/t {
			add(SeverityError, "splits", "splits*threads must not exceed %d, got %d*%d", math.MaxInt32, c.Splits, t)
		}
	}

	if n, err := humanize.ParseBytes(c.Flush); err != nil {
		add(SeverityError, "flush", "invalid size %q: %v", c.Flush, err)
	} else if n == 0 {
		add(SeverityWarning, "flush", "zero selects the default of %s", DefaultFlush)
	} else if n > math.MaxInt32 {
		add(SeverityError, "flush", "%s exceeds the maximum batch size", humanize.Bytes(n))
	}

	if c.Poll < 0 {
		add(SeverityError, "poll", "must not be negative, got %s", c.Poll)
	} else if c.Poll == 0 {
		add(SeverityWarning, "poll", "zero selects the default of %s", DefaultPoll)
	} else if c.Poll > 10*time.Second {
		add(SeverityWarning, "poll", "%s delays interrupt handling", c.Poll)
	}

	switch strings.ToLower(c.MetricsBackend) {
	case "", "none":
	case "pushgateway":
		if c.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "required for the pushgateway backend")
		} else if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			add(SeverityError, "metrics.pushgateway_url", "not an absolute URL: %q", c.PushgatewayURL)
		}
	case "datadog":
		if c.StatsdAddr == "" {
			add(SeverityError, "metrics.statsd_addr", "required for the datadog backend")
		}
	default:
		add(SeverityError, "metrics.backend", "unknown backend %q (use none, pushgateway or datadog)", c.MetricsBackend)
	}
	return issues
}

// ThreadCount resolves Threads, mapping 0 to the CPU count.
func (c Config) ThreadCount() int {
	if c.Threads == 0 {
		return runtime.NumCPU()
	}
	return c.Threads
}

// FlushBytes parses Flush. Call Validate first.
func (c Config) FlushBytes() (int, error) {
	n, err := humanize.ParseBytes(c.Flush)
	if err != nil {
		return 0, fmt.Errorf("config: flush: %w", err)
	}
	return int(n), nil
}

// Options maps c onto the orchestrator's options. interrupt is the host's
// cancellation check.
func (c Config) Options(interrupt func() bool) (dedup.Options, error) {
	flush, err := c.FlushBytes()
	if err != nil {
		return dedup.Options{}, err
	}
	return dedup.Options{
		Splits:         c.Splits,
		Threads:        c.ThreadCount(),
		FlushThreshold: flush,
		PollInterval:   c.Poll,
		Interrupt:      interrupt,
		Verbose:        c.Verbose,
	}, nil
}
