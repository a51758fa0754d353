package metric

import (
	"github.com/werbench/werbench/pkg/align"
	"github.com/werbench/werbench/pkg/text"
)

func init() {
	Register(KWER{})
	Register(Summary{})
}

// KWER is the keyword error rate: the number of keyword occurrences whose
// reference token span is not perfectly matched in the alignment, divided by
// the total number of keyword occurrences in the reference. A keyword may
// span several tokens but counts as a single unit. Samples without keyword
// occurrences are undefined.
type KWER struct{}

func (KWER) Name() string { return "kwer" }

func (KWER) Description() string {
	return "Keyword error rate: keyword occurrences transcribed with any " +
		"error, divided by total keyword occurrences in the reference. A " +
		"multi-token keyword is one unit. Micro-averaged at the dataset level."
}

func (KWER) Compute(s Sample) (Result, error) {
	refNorm, err := s.Ref().NormalizedTokens()
	if err != nil {
		return Result{}, err
	}

	var occurrences, errored int
	var ops []align.Op[string]
	for _, kw := range s.Keywords() {
		kwTokens, err := text.New(kw, s.Ref().Pipeline()).NormalizedTokens()
		if err != nil {
			return Result{}, err
		}
		spans := findSpans(refNorm, kwTokens)
		if len(spans) == 0 {
			continue
		}
		occurrences += len(spans)

		if ops == nil {
			ops, err = s.Alignment(Token)
			if err != nil {
				return Result{}, err
			}
		}
		for _, span := range spans {
			if spanHasError(ops, span[0], span[1]) {
				errored++
			}
		}
	}

	counts := map[string]int{CountKeywords: occurrences, CountKeywordErrors: errored}
	if occurrences == 0 {
		return Undefined("kwer", counts), nil
	}
	return NewResult("kwer", float64(errored)/float64(occurrences), counts), nil
}

func (KWER) Aggregate(results []Result) (Result, error) {
	return microAverage("kwer", CountKeywordErrors, CountKeywords, results), nil
}

// findSpans returns the [start, end) token index ranges of every contiguous
// occurrence of needle in tokens. An empty needle matches nothing.
func findSpans(tokens, needle []string) [][2]int {
	if len(needle) == 0 || len(needle) > len(tokens) {
		return nil
	}
	var spans [][2]int
outer:
	for i := 0; i+len(needle) <= len(tokens); i++ {
		for j, want := range needle {
			if tokens[i+j] != want {
				continue outer
			}
		}
		spans = append(spans, [2]int{i, i + len(needle)})
	}
	return spans
}

// spanHasError reports whether any operation touching reference indices in
// [start, end) is not a match.
func spanHasError(ops []align.Op[string], start, end int) bool {
	for _, op := range ops {
		if op.RefIndex < start || op.RefIndex >= end {
			continue
		}
		if op.Kind != align.Match {
			return true
		}
	}
	return false
}

// Summary reports dataset shape statistics: example, word and character
// counts on both sides. Its value is the reference word count so it stays a
// plain numeric metric; the interesting data lives in the counts.
type Summary struct{}

func (Summary) Name() string { return "summary" }

func (Summary) Description() string {
	return "Dataset shape statistics: example count and word/character totals " +
		"for reference and hypothesis texts."
}

func (Summary) Compute(s Sample) (Result, error) {
	refTokens, err := s.Ref().Tokens()
	if err != nil {
		return Result{}, err
	}
	hypTokens, err := s.Hyp().Tokens()
	if err != nil {
		return Result{}, err
	}
	refStd, err := s.Ref().Standardized()
	if err != nil {
		return Result{}, err
	}
	hypStd, err := s.Hyp().Standardized()
	if err != nil {
		return Result{}, err
	}

	counts := map[string]int{
		CountExamples: 1,
		CountRefWords: len(refTokens),
		CountHypWords: len(hypTokens),
		CountRefChars: len([]rune(refStd)),
		CountHypChars: len([]rune(hypStd)),
	}
	return NewResult("summary", float64(len(refTokens)), counts), nil
}

func (Summary) Aggregate(results []Result) (Result, error) {
	counts := map[string]int{}
	for _, r := range results {
		for k, v := range r.Counts {
			counts[k] += v
		}
	}
	return NewResult("summary", float64(counts[CountRefWords]), counts), nil
}
