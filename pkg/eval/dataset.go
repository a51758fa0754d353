package eval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/werbench/werbench/pkg/text"
)

// Dataset is an ordered collection of examples with a dataset-scoped metric
// collection that aggregates per-example results. Insertion order is the
// iteration and indexing order.
//
// Add is not safe to call concurrently with itself or with metric access;
// populate the dataset first, then evaluate. [Dataset.EvaluateAll] runs the
// per-example computations in parallel and is the supported way to use
// multiple cores.
type Dataset struct {
	pipeline text.Pipeline
	examples []*Example
	metrics  *Collection
}

// NewDataset creates an empty dataset whose examples derive their text
// stages through pipeline.
func NewDataset(pipeline text.Pipeline) *Dataset {
	d := &Dataset{pipeline: pipeline}
	d.metrics = newDatasetCollection(d)
	return d
}

// Add appends an example built from raw reference and hypothesis strings.
// Keywords are validated against the raw reference: a keyword that does not
// occur as a substring is logged and dropped, a reportable condition rather
// than a failure. Add returns the new example.
func (d *Dataset) Add(ref, hyp string, keywords ...string) *Example {
	validated := keywords[:0:0]
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if !strings.Contains(ref, kw) {
			slog.Warn("keyword not found in reference; excluded from keyword metrics",
				"keyword", kw,
				"example", len(d.examples),
			)
			continue
		}
		validated = append(validated, kw)
	}

	e := NewExample(ref, hyp, d.pipeline, validated...)
	e.index = len(d.examples)
	d.examples = append(d.examples, e)
	return e
}

// Len returns the number of examples.
func (d *Dataset) Len() int { return len(d.examples) }

// At returns the example at index i in insertion order.
func (d *Dataset) At(i int) *Example { return d.examples[i] }

// Examples returns the backing example slice in insertion order. Callers
// must treat it as read-only.
func (d *Dataset) Examples() []*Example { return d.examples }

// Metrics returns the dataset-scoped metric collection.
func (d *Dataset) Metrics() *Collection { return d.metrics }

// EvaluateAll computes the named metrics for every example concurrently,
// then the dataset-level aggregates. parallelism bounds the number of
// in-flight examples; values below 1 mean one goroutine per example.
//
// Each example owns its texts, alignments and cache exclusively, so the
// per-example phase shares no mutable state. Aggregation runs strictly
// after the group finishes and only reads finalized per-example results.
func (d *Dataset) EvaluateAll(ctx context.Context, names []string, parallelism int) error {
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for _, ex := range d.examples {
		ex := ex
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, name := range names {
				if _, err := ex.Metrics().Get(name); err != nil {
					return fmt.Errorf("example %d: %w", ex.Index(), err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Aggregation barrier: every contributing result is now cached.
	for _, name := range names {
		if _, err := d.metrics.Get(name); err != nil {
			return err
		}
	}
	return nil
}
