package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore persists runs as JSON lines in a local file. Thread-safe for
// concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that appends to the given path. The file
// is created on first write if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveRun appends a run record to the file.
func (fs *FileStore) SaveRun(_ context.Context, run Run) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("store: marshal run: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %q: %w", fs.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("store: write %q: %w", fs.path, err)
	}
	return nil
}

// ReadRuns loads every run previously written to path, oldest first.
func ReadRuns(path string) ([]Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %q: %w", path, err)
	}

	var runs []Run
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var run Run
		if err := dec.Decode(&run); err != nil {
			return nil, fmt.Errorf("store: decode %q: %w", path, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
