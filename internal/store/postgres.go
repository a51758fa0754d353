package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the evaluation_runs table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS evaluation_runs (
    id         BIGSERIAL PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    dataset    TEXT NOT NULL,
    examples   INTEGER NOT NULL,
    metrics    JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_evaluation_runs_dataset ON evaluation_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created ON evaluation_runs(created_at);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. Metric values
// are serialised as JSONB.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore over the given connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] to
// ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the evaluation_runs table and
// indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SaveRun inserts one run record.
func (s *PostgresStore) SaveRun(ctx context.Context, run Run) error {
	metricsJSON, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("store: marshal metrics: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO evaluation_runs (created_at, dataset, examples, metrics) VALUES ($1, $2, $3, $4)`,
		run.Timestamp, run.Dataset, run.Examples, metricsJSON,
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs for the given dataset label, newest
// first. A limit below 1 defaults to 50.
func (s *PostgresStore) ListRuns(ctx context.Context, dataset string, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT created_at, dataset, examples, metrics
         FROM evaluation_runs WHERE dataset = $1
         ORDER BY created_at DESC LIMIT $2`,
		dataset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			created     time.Time
			metricsJSON []byte
		)
		if err := rows.Scan(&created, &run.Dataset, &run.Examples, &metricsJSON); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		run.Timestamp = created
		if err := json.Unmarshal(metricsJSON, &run.Metrics); err != nil {
			return nil, fmt.Errorf("store: unmarshal metrics: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}
