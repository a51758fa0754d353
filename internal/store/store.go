// Package store persists evaluation run history so that error rates can be
// tracked across model or pipeline revisions. Two backends are provided: an
// append-only JSON-lines file for local use and a PostgreSQL table for
// shared tracking.
package store

import (
	"context"
	"time"
)

// Run is one completed evaluation: the dataset identity and the final
// dataset-level metric values.
type Run struct {
	Timestamp time.Time `json:"timestamp"`

	// Dataset is the configured dataset label.
	Dataset string `json:"dataset"`

	// Examples is the number of examples evaluated.
	Examples int `json:"examples"`

	// Metrics maps metric name to its dataset-level value. Undefined
	// metrics are omitted rather than stored as NaN, which JSON cannot
	// encode.
	Metrics map[string]float64 `json:"metrics"`
}

// Store persists evaluation runs.
type Store interface {
	// SaveRun appends one run record.
	SaveRun(ctx context.Context, run Run) error
}
