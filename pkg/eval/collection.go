package eval

import (
	"errors"
	"fmt"

	"github.com/werbench/werbench/pkg/metric"
)

// Collection is a lazy, cached registry of metric results scoped to one
// example or one dataset. A metric is computed on first access and the
// result cached for the lifetime of the scope; there is no invalidation,
// because examples are logically immutable once their texts are set.
//
// A failed computation is surfaced to the caller and leaves the cache slot
// empty, so the access can be retried after the input or pipeline is fixed.
// Failures are never cached as sentinel values.
type Collection struct {
	example *Example // set for example scope
	dataset *Dataset // set for dataset scope
	cache   map[string]metric.Result
}

func newExampleCollection(e *Example) *Collection {
	return &Collection{example: e, cache: map[string]metric.Result{}}
}

func newDatasetCollection(d *Dataset) *Collection {
	return &Collection{dataset: d, cache: map[string]metric.Result{}}
}

// Available returns the metric names that can be requested from this
// collection, i.e. the process-wide registry contents.
func (c *Collection) Available() []string {
	return metric.Names()
}

// Get returns the named metric result, computing it on first access.
// Unknown names return [metric.UnknownMetricError]; computation failures
// are wrapped in [metric.ComputationError] with the metric name preserved.
func (c *Collection) Get(name string) (metric.Result, error) {
	if res, ok := c.cache[name]; ok {
		return res, nil
	}

	def, err := metric.Lookup(name)
	if err != nil {
		return metric.Result{}, err
	}

	var res metric.Result
	if c.example != nil {
		res, err = def.Compute(c.example)
	} else {
		res, err = c.aggregate(def)
	}
	if err != nil {
		// Errors bubbling up from a per-example Get are already annotated
		// with the metric name; don't wrap them twice.
		var cerr *metric.ComputationError
		if errors.As(err, &cerr) {
			return metric.Result{}, err
		}
		return metric.Result{}, &metric.ComputationError{Metric: name, Err: err}
	}

	c.cache[name] = res
	return res, nil
}

// MustGet is Get for callers that treat a failure as a programming error,
// e.g. after EvaluateAll has already proven every metric computable.
func (c *Collection) MustGet(name string) metric.Result {
	res, err := c.Get(name)
	if err != nil {
		panic(fmt.Sprintf("eval: MustGet(%q): %v", name, err))
	}
	return res
}

// aggregate pulls the per-example result for every example in the dataset
// (cached where available, computed on demand otherwise) and recombines
// them through the definition's Aggregate. This is an explicit pull: the
// dataset never bypasses per-example alignments with shortcut arithmetic.
func (c *Collection) aggregate(def metric.Definition) (metric.Result, error) {
	examples := c.dataset.Examples()
	results := make([]metric.Result, 0, len(examples))
	for _, ex := range examples {
		res, err := ex.Metrics().Get(def.Name())
		if err != nil {
			return metric.Result{}, fmt.Errorf("example %d: %w", ex.Index(), err)
		}
		results = append(results, res)
	}
	return def.Aggregate(results)
}
