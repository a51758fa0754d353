// Package eval ties the metrics engine together: an [Example] pairs one
// reference with one hypothesis transcript, a [Dataset] is an ordered
// collection of examples, and each owns a lazy [Collection] of cached
// metric results.
//
// Dataset-level metric values are always recombined from per-example
// results (micro-average for ratio metrics); the dataset never re-runs the
// alignment engine on concatenated inputs, so single-example and
// whole-dataset views stay numerically consistent.
package eval

import (
	"github.com/werbench/werbench/pkg/align"
	"github.com/werbench/werbench/pkg/metric"
	"github.com/werbench/werbench/pkg/text"
)

// Compile-time check: Example is a usable metric input.
var _ metric.Sample = (*Example)(nil)

// Example pairs one reference transcript with one hypothesis transcript. It
// exclusively owns its staged texts, its metric collection and its cached
// alignments, so independent examples can be evaluated concurrently without
// shared state. A single Example is not safe for concurrent use.
type Example struct {
	index    int
	ref      *text.StagedText
	hyp      *text.StagedText
	keywords []string

	metrics    *Collection
	alignments map[metric.Granularity][]align.Op[string]
}

// NewExample builds a standalone example. Most callers go through
// [Dataset.Add], which also validates keywords and assigns the index.
func NewExample(ref, hyp string, pipeline text.Pipeline, keywords ...string) *Example {
	e := &Example{
		index:      -1,
		ref:        text.New(ref, pipeline),
		hyp:        text.New(hyp, pipeline),
		keywords:   keywords,
		alignments: make(map[metric.Granularity][]align.Op[string], 2),
	}
	e.metrics = newExampleCollection(e)
	return e
}

// Index returns the example's position in its dataset, or -1 for a
// standalone example.
func (e *Example) Index() int { return e.index }

// Ref returns the reference staged text.
func (e *Example) Ref() *text.StagedText { return e.ref }

// Hyp returns the hypothesis staged text.
func (e *Example) Hyp() *text.StagedText { return e.hyp }

// Keywords returns the validated keywords declared for this example.
func (e *Example) Keywords() []string { return e.keywords }

// Metrics returns the example-scoped metric collection.
func (e *Example) Metrics() *Collection { return e.metrics }

// Alignment returns the minimum-edit operation sequence at the given
// granularity, computing and caching it on first access. Token granularity
// aligns normalized tokens; character granularity aligns the runes of the
// standardized texts. Preprocessing failures propagate and leave the slot
// uncached.
func (e *Example) Alignment(g metric.Granularity) ([]align.Op[string], error) {
	if ops, ok := e.alignments[g]; ok {
		return ops, nil
	}

	var refUnits, hypUnits []string
	switch g {
	case metric.Character:
		refStd, err := e.ref.Standardized()
		if err != nil {
			return nil, err
		}
		hypStd, err := e.hyp.Standardized()
		if err != nil {
			return nil, err
		}
		refUnits = runeUnits(refStd)
		hypUnits = runeUnits(hypStd)
	default:
		var err error
		refUnits, err = e.ref.NormalizedTokens()
		if err != nil {
			return nil, err
		}
		hypUnits, err = e.hyp.NormalizedTokens()
		if err != nil {
			return nil, err
		}
	}

	ops := align.Align(refUnits, hypUnits)
	e.alignments[g] = ops
	return ops, nil
}

// runeUnits splits s into single-rune strings so that character-level
// alignment shares the string-typed operation sequence consumed by
// reporting.
func runeUnits(s string) []string {
	runes := []rune(s)
	units := make([]string, len(runes))
	for i, r := range runes {
		units[i] = string(r)
	}
	return units
}
