package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/werbench/werbench/pkg/metric"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults for unset
// fields and validates the result. Unknown YAML keys are rejected. Useful
// in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills fields the YAML left empty. Decoding overwrites whole
// structs, so list-valued defaults from [Default] do not survive a partial
// document and are reapplied here.
func applyDefaults(cfg *Config) {
	if cfg.Dataset.RefColumn == "" {
		cfg.Dataset.RefColumn = "ref"
	}
	if cfg.Dataset.HypColumn == "" {
		cfg.Dataset.HypColumn = "hyp"
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = []string{"wer", "cer", "summary"}
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("server.parallelism must not be negative, got %d", cfg.Server.Parallelism))
	}

	for _, name := range cfg.Metrics {
		if _, err := metric.Lookup(name); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w (registered: %v)", err, metric.Names()))
		}
	}

	if _, err := cfg.Pipeline.Resolve(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}

	if cfg.Report.MaxExamples < 0 {
		errs = append(errs, fmt.Errorf("report.max_examples must not be negative, got %d", cfg.Report.MaxExamples))
	}

	return errors.Join(errs...)
}
