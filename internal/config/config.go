// Package config centralizes host configuration for the deduplines binary.
// Tunables are sourced from command-line flags with environment-variable
// fallbacks, beneath which an optional YAML file may seed values. Flags are
// defined first so that `-help` shows every knob and its default.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment,
// explicit flags.
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-threads=4"})
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Built-in defaults.
const (
	DefaultSplits         = 4
	DefaultFlush          = "10MB"
	DefaultPoll           = 100 * time.Millisecond
	DefaultMetricsBackend = "none"
)

// Config holds all host configuration. All fields are plain values so the
// struct can be copied after construction.
type Config struct {
	// ConfigFile is the YAML file that seeded the values, if any.
	ConfigFile string

	// Partitioning and scheduling.
	Splits  int // numberOfSplits; buckets = Splits * Threads
	Threads int // worker pool size; 0 selects runtime.NumCPU()

	// Working directory lifecycle.
	WorkDir     string // parent of the per-run scratch dir; "" uses os.TempDir()
	KeepWorkDir bool   // skip removing the scratch dir after the run

	// Combiner and orchestrator tunables.
	Flush string        // task-local flush threshold, e.g. "10MB" or "512KiB"
	Poll  time.Duration // interrupt polling cadence

	// Metrics.
	MetricsBackend string // none, pushgateway, datadog
	PushgatewayURL string
	StatsdAddr     string

	Verbose bool
}

// Defaults returns a Config populated with built-in defaults only.
func Defaults() Config {
	return Config{
		Splits:         DefaultSplits,
		Flush:          DefaultFlush,
		Poll:           DefaultPoll,
		MetricsBackend: DefaultMetricsBackend,
	}
}

// LoadFromArgs builds a Config by defining flags on fs, seeding each flag's
// default from the YAML file (when -config or DEDUP_CONFIG names one) and
// then from getenv, and finally parsing args. Positional arguments remain
// available through fs.Args().
//
// A malformed environment value is ignored in favour of the lower layer, as
// with the flag package's own defaults. A missing or malformed YAML file and
// a flag parse failure are returned as errors.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	if args == nil {
		args = []string{}
	}
	base := Defaults()

	path := configPath(args, getenv)
	if path != "" {
		if err := applyFile(&base, path); err != nil {
			return nil, err
		}
		base.ConfigFile = path
	}

	cfg := &Config{}
	defineFlags(fs, cfg, base, getenv)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath finds the YAML file before the real parse, since the file seeds
// flag defaults. args are parsed once on a scratch FlagSet carrying the same
// definitions, so flag values given as separate arguments are skipped the
// way flag.Parse skips them. An explicit -config wins over DEDUP_CONFIG.
// Parse errors are left for the real parse to report.
func configPath(args []string, getenv func(string) string) string {
	scratch := flag.NewFlagSet("config", flag.ContinueOnError)
	scratch.SetOutput(io.Discard)
	var cfg Config
	defineFlags(scratch, &cfg, Defaults(), getenv)
	_ = scratch.Parse(args)
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile
	}
	return getenv("DEDUP_CONFIG")
}

// defineFlags registers every option on fs, bound to cfg. Each default is
// the environment value when set and valid, otherwise base.
func defineFlags(fs *flag.FlagSet, cfg *Config, base Config, getenv func(string) string) {
	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}
	durationEnvOrDefaultFn := func(k string, d time.Duration) time.Duration {
		if v := getenv(k); v != "" {
			if dur, err := time.ParseDuration(v); err == nil {
				return dur
			}
		}
		return d
	}

	fs.StringVar(&cfg.ConfigFile, "config", base.ConfigFile, "Optional YAML config file (env DEDUP_CONFIG)")

	fs.IntVar(&cfg.Splits, "splits", intEnvOrDefaultFn("DEDUP_SPLITS", base.Splits), "Splits per thread; buckets = splits*threads")
	fs.IntVar(&cfg.Threads, "threads", intEnvOrDefaultFn("DEDUP_THREADS", base.Threads), "Worker threads; 0 uses the CPU count")

	fs.StringVar(&cfg.WorkDir, "workdir", envOrDefaultFn("DEDUP_WORKDIR", base.WorkDir), "Parent directory for partition files (default: system temp dir)")
	fs.BoolVar(&cfg.KeepWorkDir, "keep-workdir", boolEnvOrDefaultFn("DEDUP_KEEP_WORKDIR", base.KeepWorkDir), "Keep partition files after the run")

	fs.StringVar(&cfg.Flush, "flush", envOrDefaultFn("DEDUP_FLUSH", base.Flush), "Per-task output flush threshold, e.g. 10MB")
	fs.DurationVar(&cfg.Poll, "poll", durationEnvOrDefaultFn("DEDUP_POLL", base.Poll), "Interrupt polling interval")

	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefaultFn("METRICS_BACKEND", base.MetricsBackend), "Metrics backend: none, pushgateway, datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", envOrDefaultFn("PUSHGATEWAY_URL", base.PushgatewayURL), "Pushgateway base URL")
	fs.StringVar(&cfg.StatsdAddr, "statsd-addr", envOrDefaultFn("STATSD_ADDR", base.StatsdAddr), "DogStatsD address, e.g. 127.0.0.1:8125")

	fs.BoolVar(&cfg.Verbose, "v", boolEnvOrDefaultFn("DEDUP_VERBOSE", base.Verbose), "Verbose per-phase logging")
}

// String renders the effective configuration for verbose logs.
func (c Config) String() string {
	return fmt.Sprintf("splits=%d threads=%d workdir=%q keep_workdir=%t flush=%s poll=%s metrics=%s",
		c.Splits, c.Threads, c.WorkDir, c.KeepWorkDir, c.Flush, c.Poll, c.MetricsBackend)
}
