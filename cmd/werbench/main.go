// Command werbench evaluates automatic speech recognition output: it loads
// reference/hypothesis transcript pairs, computes alignment-based error
// metrics (WER, CER, keyword error rate, ...) and renders a terminal
// report. Runs can be persisted to a JSONL file or PostgreSQL for
// regression tracking.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/werbench/werbench/internal/config"
	"github.com/werbench/werbench/internal/ingest"
	"github.com/werbench/werbench/internal/observe"
	"github.com/werbench/werbench/internal/report"
	"github.com/werbench/werbench/internal/store"
	"github.com/werbench/werbench/pkg/eval"
	"github.com/werbench/werbench/pkg/metric"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	csvPath := flag.String("csv", "", "CSV dataset path (overrides dataset.path from the config)")
	alignments := flag.Bool("alignments", false, "render per-example alignment diffs (overrides report.alignments)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (overrides server.metrics_addr)")
	verbose := flag.Bool("verbose", false, "enable debug logging (overrides server.log_level)")
	history := flag.Int("history", 0, "print the N most recent persisted runs and exit")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "werbench: %v\n", err)
		return 1
	}
	if *csvPath != "" {
		cfg.Dataset.Path = *csvPath
	}
	if *alignments {
		cfg.Report.Alignments = true
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}
	if *verbose {
		cfg.Server.LogLevel = config.LogDebug
	}
	if cfg.Dataset.Path == "" && *history == 0 {
		fmt.Fprintln(os.Stderr, "werbench: no dataset configured; set dataset.path or pass -csv")
		return 1
	}
	if cfg.Dataset.Label == "" && cfg.Dataset.Path != "" {
		cfg.Dataset.Label = filepath.Base(cfg.Dataset.Path)
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.Level(),
	}))
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		if err := printHistory(ctx, cfg, *history); err != nil {
			slog.Error("failed to read run history", "err", err)
			return 1
		}
		return 0
	}

	// ── Telemetry (optional) ──────────────────────────────────────────────────
	if cfg.Server.MetricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
		if err != nil {
			slog.Error("failed to initialise telemetry", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown", "err", err)
			}
		}()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("serving prometheus metrics", "addr", cfg.Server.MetricsAddr)
			if err := http.ListenAndServe(cfg.Server.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server", "err", err)
			}
		}()
	}

	// ── Dataset ───────────────────────────────────────────────────────────────
	pipeline, err := cfg.Pipeline.Resolve()
	if err != nil {
		slog.Error("failed to resolve pipeline", "err", err)
		return 1
	}

	rows, err := ingest.LoadCSV(cfg.Dataset.Path, ingest.Columns{
		Ref:      cfg.Dataset.RefColumn,
		Hyp:      cfg.Dataset.HypColumn,
		Keywords: cfg.Dataset.KeywordColumns,
	})
	if err != nil {
		slog.Error("failed to load dataset", "path", cfg.Dataset.Path, "err", err)
		return 1
	}

	ds := eval.NewDataset(pipeline)
	n := ingest.Populate(ds, rows)
	slog.Info("dataset loaded", "path", cfg.Dataset.Path, "examples", n, "metrics", cfg.Metrics)

	// ── Evaluate ──────────────────────────────────────────────────────────────
	evalCtx, span := observe.StartSpan(ctx, "werbench.evaluate")
	log := observe.Logger(evalCtx)
	start := time.Now()
	err = ds.EvaluateAll(evalCtx, cfg.Metrics, cfg.Server.Parallelism)
	elapsed := time.Since(start)
	span.End()
	if err != nil {
		var cerr *metric.ComputationError
		if errors.As(err, &cerr) {
			observe.DefaultMetrics().RecordComputationError(ctx, cerr.Metric)
		}
		log.Error("evaluation failed", "err", err)
		return 1
	}
	observe.DefaultMetrics().RecordEvaluation(ctx, cfg.Dataset.Label, elapsed.Seconds(), ds.Len())
	log.Info("evaluation complete", "examples", ds.Len(), "elapsed", elapsed)

	// ── Report ────────────────────────────────────────────────────────────────
	reportOpts := report.Options{
		Alignments:  cfg.Report.Alignments,
		MaxExamples: cfg.Report.MaxExamples,
	}
	if err := report.Write(os.Stdout, ds, cfg.Metrics, reportOpts); err != nil {
		slog.Error("failed to render report", "err", err)
		return 1
	}

	// ── Persist run (optional) ────────────────────────────────────────────────
	if err := persistRun(ctx, cfg, ds); err != nil {
		slog.Error("failed to persist run", "err", err)
		return 1
	}

	return 0
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicitly specified missing file is
// still an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) && path == "config.yaml" {
		return config.Default(), nil
	}
	return cfg, err
}

// printHistory lists the most recent persisted runs, preferring the
// PostgreSQL store when both backends are configured.
func printHistory(ctx context.Context, cfg *config.Config, limit int) error {
	var runs []store.Run
	switch {
	case cfg.Store.PostgresDSN != "":
		if cfg.Dataset.Label == "" {
			return errors.New("postgres history is keyed by dataset label; set dataset.label or dataset.path")
		}
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		runs, err = store.NewPostgresStore(pool).ListRuns(ctx, cfg.Dataset.Label, limit)
		if err != nil {
			return err
		}
	case cfg.Store.Path != "":
		all, err := store.ReadRuns(cfg.Store.Path)
		if err != nil {
			return err
		}
		// The file is append-only, so the tail holds the newest runs.
		if len(all) > limit {
			all = all[len(all)-limit:]
		}
		for i := len(all) - 1; i >= 0; i-- {
			runs = append(runs, all[i])
		}
	default:
		return errors.New("no store configured; set store.path or store.postgres_dsn")
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  examples=%d  %v\n",
			run.Timestamp.Format(time.RFC3339), run.Dataset, run.Examples, run.Metrics)
	}
	return nil
}

// persistRun writes the dataset-level results to every configured store.
func persistRun(ctx context.Context, cfg *config.Config, ds *eval.Dataset) error {
	if cfg.Store.Path == "" && cfg.Store.PostgresDSN == "" {
		return nil
	}

	run := store.Run{
		Timestamp: time.Now().UTC(),
		Dataset:   cfg.Dataset.Label,
		Examples:  ds.Len(),
		Metrics:   make(map[string]float64, len(cfg.Metrics)),
	}
	for _, name := range cfg.Metrics {
		res, err := ds.Metrics().Get(name)
		if err != nil {
			return err
		}
		if res.Defined {
			run.Metrics[name] = res.Value
		}
	}

	if cfg.Store.Path != "" {
		if err := store.NewFileStore(cfg.Store.Path).SaveRun(ctx, run); err != nil {
			return err
		}
		observe.DefaultMetrics().RecordRunPersisted(ctx, "file")
		slog.Info("run persisted", "store", "file", "path", cfg.Store.Path)
	}

	if cfg.Store.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		if err := pg.SaveRun(ctx, run); err != nil {
			return err
		}
		observe.DefaultMetrics().RecordRunPersisted(ctx, "postgres")
		slog.Info("run persisted", "store", "postgres")
	}

	return nil
}
