package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func newFS() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func noEnv(string) string { return "" }

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dedup.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return p
}

// TestLoad_Defaults ensures that with no file, env or flags the built-in
// defaults are populated.
func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromArgs(newFS(), noEnv, nil)
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	want := Defaults()
	if *cfg != want {
		t.Fatalf("got %+v; want %+v", *cfg, want)
	}
}

// TestLoadFromArgs_EnvDefaultsAndFlags validates the basic precedence model:
// environment seeds defaults, explicit flags override env.
func TestLoadFromArgs_EnvDefaultsAndFlags(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		"DEDUP_SPLITS":       "8",
		"DEDUP_THREADS":      "2",
		"DEDUP_KEEP_WORKDIR": "yes",
		"DEDUP_FLUSH":        "1MiB",
		"DEDUP_POLL":         "250ms",
		"METRICS_BACKEND":    "datadog",
		"STATSD_ADDR":        "127.0.0.1:8125",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := LoadFromArgs(newFS(), getenv, []string{"-threads=3", "-v", "out.txt", "in.txt"})
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.Splits != 8 || !cfg.KeepWorkDir || cfg.Flush != "1MiB" || cfg.Poll != 250*time.Millisecond {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.MetricsBackend != "datadog" || cfg.StatsdAddr != "127.0.0.1:8125" {
		t.Fatalf("metrics env not applied: %+v", cfg)
	}
	if cfg.Threads != 3 {
		t.Fatalf("flag override not applied: threads=%d", cfg.Threads)
	}
	if !cfg.Verbose {
		t.Fatalf("-v not applied")
	}
}

func TestLoadFromArgs_PositionalArgsRemain(t *testing.T) {
	t.Parallel()
	fs := newFS()
	if _, err := LoadFromArgs(fs, noEnv, []string{"-splits", "2", "out", "a", "b"}); err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if got := strings.Join(fs.Args(), ","); got != "out,a,b" {
		t.Fatalf("got args %q; want out,a,b", got)
	}
}

// A malformed env value falls back to the lower layer.
func TestLoadFromArgs_BadEnvIgnored(t *testing.T) {
	t.Parallel()
	env := map[string]string{"DEDUP_SPLITS": "many", "DEDUP_POLL": "soon", "DEDUP_VERBOSE": "maybe"}
	cfg, err := LoadFromArgs(newFS(), func(k string) string { return env[k] }, nil)
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.Splits != DefaultSplits || cfg.Poll != DefaultPoll || cfg.Verbose {
		t.Fatalf("bad env leaked through: %+v", cfg)
	}
}

func TestLoadFromArgs_UnknownFlag(t *testing.T) {
	t.Parallel()
	if _, err := LoadFromArgs(newFS(), noEnv, []string{"-nope"}); err == nil {
		t.Fatalf("expected parse error for unknown flag")
	}
}

// The YAML file sits beneath env and flags.
func TestLoadFromArgs_FileLayer(t *testing.T) {
	t.Parallel()
	path := writeYAML(t, `
splits: 16
threads: 6
workdir: /scratch
flush: 2MB
poll: 50ms
metrics:
  backend: pushgateway
  pushgateway_url: http://gw:9091
verbose: true
`)
	env := map[string]string{"DEDUP_THREADS": "5"}
	cfg, err := LoadFromArgs(newFS(), func(k string) string { return env[k] }, []string{"-config", path, "-flush=4MB"})
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Fatalf("ConfigFile = %q; want %q", cfg.ConfigFile, path)
	}
	if cfg.Splits != 16 || cfg.WorkDir != "/scratch" || cfg.Poll != 50*time.Millisecond || !cfg.Verbose {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.MetricsBackend != "pushgateway" || cfg.PushgatewayURL != "http://gw:9091" {
		t.Fatalf("file metrics not applied: %+v", cfg)
	}
	if cfg.Threads != 5 {
		t.Fatalf("env should override file: threads=%d", cfg.Threads)
	}
	if cfg.Flush != "4MB" {
		t.Fatalf("flag should override file: flush=%s", cfg.Flush)
	}
}

// A flag given with a separate value ahead of -config must not hide the
// file from the YAML layer.
func TestLoadFromArgs_FileAfterSpacedFlag(t *testing.T) {
	t.Parallel()
	path := writeYAML(t, "threads: 3\nsplits: 2\n")
	cfg, err := LoadFromArgs(newFS(), noEnv, []string{"-splits", "8", "-config", path, "out"})
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Fatalf("ConfigFile = %q; want %q", cfg.ConfigFile, path)
	}
	if cfg.Threads != 3 {
		t.Fatalf("yaml threads not applied: got %d; want 3", cfg.Threads)
	}
	if cfg.Splits != 8 {
		t.Fatalf("flag should override file: splits=%d", cfg.Splits)
	}
}

func TestLoadFromArgs_FileFromEnv(t *testing.T) {
	t.Parallel()
	path := writeYAML(t, "splits: 3\n")
	env := map[string]string{"DEDUP_CONFIG": path}
	cfg, err := LoadFromArgs(newFS(), func(k string) string { return env[k] }, []string{"-config=" + path})
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.Splits != 3 {
		t.Fatalf("splits = %d; want 3", cfg.Splits)
	}

	cfg, err = LoadFromArgs(newFS(), func(k string) string { return env[k] }, nil)
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.Splits != 3 || cfg.ConfigFile != path {
		t.Fatalf("DEDUP_CONFIG not honoured: %+v", cfg)
	}
}

func TestLoadFromArgs_FileErrors(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown key": "split: 3\n",
		"bad type":    "splits: lots\n",
		"bad poll":    "poll: later\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeYAML(t, body)
			if _, err := LoadFromArgs(newFS(), noEnv, []string{"-config", path}); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
	t.Run("missing", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "absent.yaml")
		if _, err := LoadFromArgs(newFS(), noEnv, []string{"-config", missing}); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
}

func TestLoadFromArgs_EmptyFile(t *testing.T) {
	t.Parallel()
	path := writeYAML(t, "")
	cfg, err := LoadFromArgs(newFS(), noEnv, []string{"-config", path})
	if err != nil {
		t.Fatalf("LoadFromArgs: %v", err)
	}
	if cfg.Splits != DefaultSplits {
		t.Fatalf("splits = %d; want default", cfg.Splits)
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	env := func(k string) string {
		if k == "DEDUP_CONFIG" {
			return "env.yaml"
		}
		return ""
	}
	tests := []struct {
		args []string
		want string
	}{
		{nil, "env.yaml"},
		{[]string{"-config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.yaml", "-v"}, "b.yaml"},
		{[]string{"-v", "-config=c.yaml"}, "c.yaml"},
		{[]string{"-splits", "8", "-config", "a.yaml"}, "a.yaml"},
		{[]string{"-workdir", "/tmp", "-poll", "1s", "--config", "d.yaml", "out"}, "d.yaml"},
		{[]string{"-bogus", "-config", "e.yaml"}, "env.yaml"},
		{[]string{"out", "-config=ignored.yaml"}, "env.yaml"},
		{[]string{"--", "-config=ignored.yaml"}, "env.yaml"},
	}
	for _, tt := range tests {
		if got := configPath(tt.args, env); got != tt.want {
			t.Fatalf("configPath(%q) = %q; want %q", tt.args, got, tt.want)
		}
	}
}

func TestThreadCount(t *testing.T) {
	t.Parallel()
	if got := (Config{Threads: 0}).ThreadCount(); got != runtime.NumCPU() {
		t.Fatalf("ThreadCount(0) = %d; want %d", got, runtime.NumCPU())
	}
	if got := (Config{Threads: 7}).ThreadCount(); got != 7 {
		t.Fatalf("ThreadCount(7) = %d; want 7", got)
	}
}
