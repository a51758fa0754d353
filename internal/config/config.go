// Package config provides the configuration schema and loader for the
// werbench evaluation tool: which preprocessing pipeline to apply, which
// metrics to compute, where the dataset comes from and where results go.
package config

import (
	"log/slog"

	"github.com/werbench/werbench/pkg/text"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to the slog level, defaulting to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure, typically loaded from a YAML
// file via [Load] or [LoadFromReader].
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Metrics  []string       `yaml:"metrics"`
	Report   ReportConfig   `yaml:"report"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
}

// DatasetConfig selects the tabular input and its column mapping.
type DatasetConfig struct {
	// Path is the CSV file holding reference/hypothesis pairs.
	Path string `yaml:"path"`

	// Label identifies the dataset in reports and the run-history store.
	// Defaults to the file basename.
	Label string `yaml:"label"`

	// RefColumn and HypColumn name the CSV columns. Defaults: "ref", "hyp".
	RefColumn string `yaml:"ref_column"`
	HypColumn string `yaml:"hyp_column"`

	// KeywordColumns name columns whose cells hold ';'-separated keyword
	// lists validated against the reference.
	KeywordColumns []string `yaml:"keyword_columns"`
}

// PipelineConfig selects preprocessing functions by registry name.
// Empty lists are pass-throughs; an empty tokenizer means whitespace
// splitting.
type PipelineConfig struct {
	Standardizers []string `yaml:"standardizers"`
	Tokenizer     string   `yaml:"tokenizer"`
	Normalizers   []string `yaml:"normalizers"`
}

// Resolve looks up the named functions in the text registries and returns
// the assembled pipeline.
func (p PipelineConfig) Resolve() (text.Pipeline, error) {
	std, err := text.ResolveTransforms(p.Standardizers)
	if err != nil {
		return text.Pipeline{}, err
	}
	tok, err := text.ResolveTokenizer(p.Tokenizer)
	if err != nil {
		return text.Pipeline{}, err
	}
	norm, err := text.ResolveTransforms(p.Normalizers)
	if err != nil {
		return text.Pipeline{}, err
	}
	return text.Pipeline{Standardizers: std, Tokenizer: tok, Normalizers: norm}, nil
}

// ReportConfig controls the terminal report.
type ReportConfig struct {
	// Alignments enables the per-example alignment diff.
	Alignments bool `yaml:"alignments"`

	// MaxExamples caps how many per-example diffs are printed. 0 = all.
	MaxExamples int `yaml:"max_examples"`
}

// StoreConfig selects where evaluation runs are persisted. Both targets may
// be set; an empty target is skipped.
type StoreConfig struct {
	// Path appends runs as JSON lines to a local file.
	Path string `yaml:"path"`

	// PostgresDSN persists runs to a PostgreSQL database.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// MetricsAddr, when set, serves Prometheus metrics on this address
	// (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Parallelism bounds concurrent example evaluation. 0 = one goroutine
	// per example.
	Parallelism int `yaml:"parallelism"`
}

// Default returns the configuration used when a field is left unset.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{RefColumn: "ref", HypColumn: "hyp"},
		Pipeline: PipelineConfig{
			Standardizers: []string{"nfc", "lowercase"},
			Tokenizer:     "whitespace",
			Normalizers:   []string{"strip_punct"},
		},
		Metrics: []string{"wer", "cer", "summary"},
		Server:  ServerConfig{LogLevel: LogInfo},
	}
}
