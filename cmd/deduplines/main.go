// Command deduplines computes line-level set differences and distinct lines
// over files too large for memory, by partitioning the inputs into buckets
// on disk and combining each bucket on a work-stealing pool.
//
// Usage:
//
//	deduplines added  [flags] FIRST SECOND OUTPUT
//	deduplines unique [flags] OUTPUT INPUT...
//
// added writes every line of SECOND that does not occur in FIRST; unique
// writes each distinct line of the inputs once. SIGINT and SIGTERM abort
// the run cooperatively and exit with status 130.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"deduplines/internal/config"
	"deduplines/internal/dedup"
	"deduplines/internal/errs"
	"deduplines/internal/metrics"
	"deduplines/internal/metrics/datadog"
	"deduplines/internal/metrics/prompush"

	"github.com/dustin/go-humanize"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code. ctx being
// done is translated into the orchestrator's interrupt check.
func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	sub := args[0]
	switch sub {
	case dedup.OpAdded, dedup.OpUnique:
	case "-h", "-help", "--help", "help":
		usage(stderr)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", sub)
		usage(stderr)
		return exitUsage
	}

	fs := flag.NewFlagSet("deduplines "+sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: deduplines %s [flags] %s\n", sub, positionalUsage(sub))
		fs.PrintDefaults()
	}
	cfg, err := config.LoadFromArgs(fs, getenv, args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	issues := config.Validate(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return exitUsage
	}

	pos := fs.Args()
	if (sub == dedup.OpAdded && len(pos) != 3) || (sub == dedup.OpUnique && len(pos) < 2) {
		fs.Usage()
		return exitUsage
	}

	logger := log.New(stderr, "", log.LstdFlags)
	if cfg.Verbose {
		logger.Printf("config: %s", cfg)
	}

	var inputs []string
	var output string
	if sub == dedup.OpAdded {
		inputs, output = pos[:2], pos[2]
	} else {
		inputs, output = pos[1:], pos[0]
	}
	if err := checkInputs(inputs); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if err := checkOutputDir(output); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	flush := setupMetrics(*cfg, logger)
	defer flush()

	workDir, err := os.MkdirTemp(cfg.WorkDir, "deduplines-")
	if err != nil {
		fmt.Fprintf(stderr, "create working directory: %v\n", err)
		return exitFailure
	}
	if cfg.KeepWorkDir {
		logger.Printf("workdir: keeping %s", workDir)
	} else {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				logger.Printf("workdir: cleanup %s: %v", workDir, err)
			}
		}()
	}

	opts, err := cfg.Options(dedup.ContextInterrupt(ctx))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	opts.Logger = logger

	start := time.Now()
	var rep dedup.Report
	if sub == dedup.OpAdded {
		rep, err = dedup.ComputeAddedLines(workDir, inputs[0], inputs[1], output, opts)
	} else {
		rep, err = dedup.ComputeUniqueLines(workDir, inputs, output, opts)
	}
	switch {
	case errs.IsInterrupted(err):
		fmt.Fprintln(stderr, "interrupted")
		return exitInterrupted
	case errors.Is(err, errs.ErrInvalidConfig):
		fmt.Fprintln(stderr, err)
		return exitUsage
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", sub, err)
		return exitFailure
	}

	if cfg.Verbose {
		logger.Printf("%s: partitions=%d split=%d written=%d bytes=%s completed in %s",
			sub, rep.Partitions, rep.SplitLines, rep.WrittenLines,
			humanize.Bytes(uint64(rep.WrittenBytes)), time.Since(start).Truncate(time.Millisecond))
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage:\n  deduplines %s [flags] %s\n  deduplines %s [flags] %s\n\nRun a command with -h for its flags.\n",
		dedup.OpAdded, positionalUsage(dedup.OpAdded), dedup.OpUnique, positionalUsage(dedup.OpUnique))
}

func positionalUsage(sub string) string {
	if sub == dedup.OpAdded {
		return "FIRST SECOND OUTPUT"
	}
	return "OUTPUT INPUT..."
}

// checkInputs requires every input to be an existing regular file.
func checkInputs(paths []string) error {
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("input: %s is not a regular file", p)
		}
	}
	return nil
}

// checkOutputDir probes that the output's parent directory accepts new
// files, so a bad destination fails before any partitioning work.
func checkOutputDir(output string) error {
	dir := filepath.Dir(output)
	f, err := os.CreateTemp(dir, ".deduplines-probe-")
	if err != nil {
		return fmt.Errorf("output: directory %s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// setupMetrics installs the configured backend and returns a flush func for
// the end of the run. Backend construction failures fall back to the nop
// backend with a log line.
func setupMetrics(cfg config.Config, logger *log.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch strings.ToLower(cfg.MetricsBackend) {
	case "pushgateway":
		b, err = prompush.NewBackend("deduplines", cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: cfg.StatsdAddr})
	default:
		if cfg.Verbose {
			logger.Printf("metrics: disabled (backend=%q)", cfg.MetricsBackend)
		}
		return func() {}
	}
	if err != nil {
		logger.Printf("metrics: failed to init %s backend: %v; using nop", cfg.MetricsBackend, err)
		return func() {}
	}
	if cfg.Verbose {
		logger.Printf("metrics: backend=%s", cfg.MetricsBackend)
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Printf("metrics: flush error: %v", err)
		}
	}
}
