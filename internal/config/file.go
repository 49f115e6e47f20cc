package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape. Pointer fields distinguish "absent" from a
// zero value so a file can set threads: 0 or keep_workdir: false explicitly.
type fileConfig struct {
	Splits      *int    `yaml:"splits"`
	Threads     *int    `yaml:"threads"`
	WorkDir     *string `yaml:"workdir"`
	KeepWorkDir *bool   `yaml:"keep_workdir"`
	Flush       *string `yaml:"flush"`
	Poll        *string `yaml:"poll"`

	Metrics struct {
		Backend        *string `yaml:"backend"`
		PushgatewayURL *string `yaml:"pushgateway_url"`
		StatsdAddr     *string `yaml:"statsd_addr"`
	} `yaml:"metrics"`

	Verbose *bool `yaml:"verbose"`
}

// applyFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}

	setInt(&cfg.Splits, fc.Splits)
	setInt(&cfg.Threads, fc.Threads)
	setString(&cfg.WorkDir, fc.WorkDir)
	setBool(&cfg.KeepWorkDir, fc.KeepWorkDir)
	setString(&cfg.Flush, fc.Flush)
	if fc.Poll != nil {
		d, err := time.ParseDuration(*fc.Poll)
		if err != nil {
			return fmt.Errorf("config: decode %s: poll: %w", path, err)
		}
		cfg.Poll = d
	}
	setString(&cfg.MetricsBackend, fc.Metrics.Backend)
	setString(&cfg.PushgatewayURL, fc.Metrics.PushgatewayURL)
	setString(&cfg.StatsdAddr, fc.Metrics.StatsdAddr)
	setBool(&cfg.Verbose, fc.Verbose)
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
