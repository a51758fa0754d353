// Package report renders evaluation results for the terminal: a metric
// summary table and, optionally, a per-example alignment diff. It is a
// read-only consumer of alignment operations and metric results.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/antzucaro/matchr"

	"github.com/werbench/werbench/pkg/align"
	"github.com/werbench/werbench/pkg/eval"
	"github.com/werbench/werbench/pkg/metric"
)

// Options controls report contents.
type Options struct {
	// Alignments enables per-example alignment diffs.
	Alignments bool

	// MaxExamples caps how many example diffs are rendered. 0 = all.
	MaxExamples int
}

// Write renders the dataset-level results for the named metrics, followed by
// per-example diffs when enabled.
func Write(w io.Writer, ds *eval.Dataset, names []string, opts Options) error {
	if err := writeSummary(w, ds, names); err != nil {
		return err
	}
	if !opts.Alignments {
		return nil
	}

	limit := ds.Len()
	if opts.MaxExamples > 0 && opts.MaxExamples < limit {
		limit = opts.MaxExamples
	}
	for i := 0; i < limit; i++ {
		if err := writeExample(w, ds.At(i)); err != nil {
			return err
		}
	}
	if limit < ds.Len() {
		fmt.Fprintf(w, "... %d more examples not shown\n", ds.Len()-limit)
	}
	return nil
}

func writeSummary(w io.Writer, ds *eval.Dataset, names []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "METRIC\tVALUE\tDETAIL\n")
	for _, name := range names {
		res, err := ds.Metrics().Get(name)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, formatValue(res), formatCounts(res.Counts))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

func formatValue(res metric.Result) string {
	if !res.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", res.Value)
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

// writeExample renders the token-level alignment for one example. Each
// operation is one line; substitutions carry a Jaro-Winkler similarity note
// to make near-misses (phonetic confusions, small typos) easy to spot.
func writeExample(w io.Writer, ex *eval.Example) error {
	ops, err := ex.Alignment(metric.Token)
	if err != nil {
		return fmt.Errorf("report: example %d: %w", ex.Index(), err)
	}

	counts := align.Tally(ops)
	fmt.Fprintf(w, "\nexample %d  edits=%d ref_tokens=%d\n", ex.Index(), counts.Edits(), counts.RefLength())
	fmt.Fprintf(w, "  ref: %s\n", ex.Ref().Raw())
	fmt.Fprintf(w, "  hyp: %s\n", ex.Hyp().Raw())

	for _, op := range ops {
		switch op.Kind {
		case align.Match:
			fmt.Fprintf(w, "  ok    %s\n", op.Ref)
		case align.Substitute:
			jw := matchr.JaroWinkler(op.Ref, op.Hyp, false)
			fmt.Fprintf(w, "  sub   %s -> %s  (jw %.2f)\n", op.Ref, op.Hyp, jw)
		case align.Delete:
			fmt.Fprintf(w, "  del   %s ->\n", op.Ref)
		case align.Insert:
			fmt.Fprintf(w, "  ins      -> %s\n", op.Hyp)
		}
	}
	return nil
}
