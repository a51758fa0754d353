// Package metric defines the named error metrics computed from transcript
// alignments (WER, CER, raw Levenshtein distance, keyword error rate and a
// dataset summary) together with the process-wide registry they are
// resolved through.
//
// A metric is a pure function of its inputs: computing it never mutates the
// staged texts or the example beyond cache population in the owning
// collection, and recomputing from identical inputs yields an identical
// result. Each [Definition] supplies both the per-example computation and
// the dataset-level aggregation over per-example results, so aggregates are
// always a recombination of per-example counts rather than an independent
// recomputation.
package metric

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/werbench/werbench/pkg/align"
	"github.com/werbench/werbench/pkg/text"
)

// Granularity selects the alignment unit for a metric.
type Granularity int

const (
	// Token aligns normalized tokens (word level).
	Token Granularity = iota

	// Character aligns the runes of the standardized text (character level).
	Character
)

// String returns the granularity name.
func (g Granularity) String() string {
	if g == Character {
		return "character"
	}
	return "token"
}

// Sample is the per-example view a metric computes against. It is
// implemented by eval.Example; metrics must treat it as read-only.
type Sample interface {
	// Ref returns the reference staged text.
	Ref() *text.StagedText

	// Hyp returns the hypothesis staged text.
	Hyp() *text.StagedText

	// Keywords returns the validated keyword strings for this sample.
	Keywords() []string

	// Alignment returns the cached-or-computed operation sequence at the
	// given granularity.
	Alignment(g Granularity) ([]align.Op[string], error)
}

// Well-known count keys exposed in [Result.Counts]. Reporting relies on
// these names being stable.
const (
	CountSubstitutions = "substitutions"
	CountInsertions    = "insertions"
	CountDeletions     = "deletions"
	CountMatches       = "matches"
	CountEdits         = "edits"
	CountRefLength     = "ref_length"
	CountHypLength     = "hyp_length"
	CountKeywords      = "keywords"
	CountKeywordErrors = "keyword_errors"
	CountExamples      = "examples"
	CountRefWords      = "ref_words"
	CountHypWords      = "hyp_words"
	CountRefChars      = "ref_chars"
	CountHypChars      = "hyp_chars"
)

// Result is one computed metric value with its supporting counts.
type Result struct {
	// Metric is the registry name the result was computed under.
	Metric string

	// Value is the metric value. When Defined is false, Value is NaN.
	Value float64

	// Defined is false when the value has no meaning for the inputs, e.g.
	// a ratio whose reference denominator is zero.
	Defined bool

	// Counts holds the named supporting counts (substitutions, insertions,
	// deletions, reference length, ...).
	Counts map[string]int
}

// NewResult returns a defined result.
func NewResult(metric string, value float64, counts map[string]int) Result {
	return Result{Metric: metric, Value: value, Defined: true, Counts: counts}
}

// Undefined returns an explicitly undefined result (Value NaN). Used for
// ratio metrics over an empty reference instead of dividing by zero.
func Undefined(metric string, counts map[string]int) Result {
	return Result{Metric: metric, Value: math.NaN(), Defined: false, Counts: counts}
}

// Definition is a registered metric: a per-example computation plus the
// aggregation that recombines per-example results into a dataset result.
type Definition interface {
	// Name is the registry key the metric is resolved by.
	Name() string

	// Description is a one-paragraph human-readable description.
	Description() string

	// Compute evaluates the metric for a single sample.
	Compute(s Sample) (Result, error)

	// Aggregate recombines per-example results, in dataset order, into one
	// dataset-level result. Ratio metrics micro-average: summed numerators
	// over summed denominators, with undefined per-example results excluded
	// from both sums.
	Aggregate(results []Result) (Result, error)
}

// UnknownMetricError is returned when a metric name is not registered.
type UnknownMetricError struct {
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("metric: unknown metric %q", e.Name)
}

// ComputationError wraps a failure inside a registered metric's computation,
// preserving the metric name for the caller.
type ComputationError struct {
	Metric string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("metric: compute %q: %v", e.Metric, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

var (
	registryMu sync.RWMutex
	registry   = map[string]Definition{}
)

// Register adds a metric definition to the process-wide registry. It panics
// if the name is already registered; built-ins register at init.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[def.Name()]; dup {
		panic(fmt.Sprintf("metric: Register called twice for %q", def.Name()))
	}
	registry[def.Name()] = def
}

// Lookup resolves a metric by name, returning [UnknownMetricError] when the
// name is not registered.
func Lookup(name string) (Definition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[name]
	if !ok {
		return nil, &UnknownMetricError{Name: name}
	}
	return def, nil
}

// Names returns all registered metric names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// microAverage sums the numerator and denominator counts of the defined
// results and divides. Undefined results are excluded from both sums, so
// their error counts do not leak into the aggregate. All counts of the
// defined results are summed into the aggregate's count map.
func microAverage(metric, numKey, denKey string, results []Result) Result {
	counts := map[string]int{}
	for _, r := range results {
		if !r.Defined {
			continue
		}
		for k, v := range r.Counts {
			counts[k] += v
		}
	}
	den := counts[denKey]
	if den == 0 {
		return Undefined(metric, counts)
	}
	return NewResult(metric, float64(counts[numKey])/float64(den), counts)
}
