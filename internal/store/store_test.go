package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.jsonl")
	fs := NewFileStore(path)

	runs := []Run{
		{Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Dataset: "dev", Examples: 10, Metrics: map[string]float64{"wer": 0.12}},
		{Timestamp: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), Dataset: "dev", Examples: 10, Metrics: map[string]float64{"wer": 0.11, "cer": 0.04}},
	}
	for _, run := range runs {
		if err := fs.SaveRun(context.Background(), run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	got, err := ReadRuns(path)
	if err != nil {
		t.Fatalf("ReadRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d runs, want 2", len(got))
	}
	if got[1].Metrics["cer"] != 0.04 {
		t.Errorf("runs[1].Metrics[cer] = %v, want 0.04", got[1].Metrics["cer"])
	}
	if !got[0].Timestamp.Equal(runs[0].Timestamp) {
		t.Errorf("runs[0].Timestamp = %v, want %v", got[0].Timestamp, runs[0].Timestamp)
	}
}

// ---------------------------------------------------------------------------
// Test helpers: mock DB types
// ---------------------------------------------------------------------------

// mockDB records executed statements and arguments.
type mockDB struct {
	execSQL  []string
	execArgs [][]any
	execErr  error
}

func (m *mockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execSQL = append(m.execSQL, sql)
	m.execArgs = append(m.execArgs, args)
	return pgconn.CommandTag{}, m.execErr
}

func (m *mockDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (m *mockDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func TestPostgresStore_Migrate(t *testing.T) {
	t.Parallel()

	db := &mockDB{}
	s := NewPostgresStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(db.execSQL) != 1 || db.execSQL[0] != Schema {
		t.Errorf("Migrate executed %v, want Schema DDL", db.execSQL)
	}
}

func TestPostgresStore_SaveRun(t *testing.T) {
	t.Parallel()

	db := &mockDB{}
	s := NewPostgresStore(db)

	run := Run{
		Timestamp: time.Now().UTC(),
		Dataset:   "nightly",
		Examples:  128,
		Metrics:   map[string]float64{"wer": 0.2},
	}
	if err := s.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if len(db.execArgs) != 1 {
		t.Fatalf("got %d exec calls, want 1", len(db.execArgs))
	}
	args := db.execArgs[0]
	if args[1] != "nightly" {
		t.Errorf("dataset arg = %v, want nightly", args[1])
	}
	if args[2] != 128 {
		t.Errorf("examples arg = %v, want 128", args[2])
	}
	if string(args[3].([]byte)) != `{"wer":0.2}` {
		t.Errorf("metrics arg = %s, want {\"wer\":0.2}", args[3])
	}
}
