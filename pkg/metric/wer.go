package metric

import "github.com/werbench/werbench/pkg/align"

func init() {
	Register(WER{})
	Register(CER{})
	Register(Levenshtein{})
}

// WER is the word error rate: token-level edit distance between the
// normalized reference and hypothesis tokens, divided by the reference
// token count. A zero-length reference makes the per-example value
// undefined rather than a division error.
type WER struct{}

func (WER) Name() string { return "wer" }

func (WER) Description() string {
	return "Word error rate: token-level edit distance between reference and " +
		"hypothesis, divided by the number of reference tokens. The dataset " +
		"value is the micro-average (summed edits over summed reference lengths)."
}

func (WER) Compute(s Sample) (Result, error) {
	ops, err := s.Alignment(Token)
	if err != nil {
		return Result{}, err
	}
	return ratioFromOps("wer", ops), nil
}

func (WER) Aggregate(results []Result) (Result, error) {
	return microAverage("wer", CountEdits, CountRefLength, results), nil
}

// CER is the character error rate: the same computation as WER at character
// granularity over the standardized (pre-tokenization) text.
type CER struct{}

func (CER) Name() string { return "cer" }

func (CER) Description() string {
	return "Character error rate: character-level edit distance between the " +
		"standardized reference and hypothesis texts, divided by the number of " +
		"reference characters. Micro-averaged at the dataset level."
}

func (CER) Compute(s Sample) (Result, error) {
	ops, err := s.Alignment(Character)
	if err != nil {
		return Result{}, err
	}
	return ratioFromOps("cer", ops), nil
}

func (CER) Aggregate(results []Result) (Result, error) {
	return microAverage("cer", CountEdits, CountRefLength, results), nil
}

// Levenshtein is the raw edit distance over normalized tokens, independent
// of sequence length. It underlies WER and is exposed standalone; its
// dataset value is the plain sum of per-example distances.
type Levenshtein struct{}

func (Levenshtein) Name() string { return "levenshtein" }

func (Levenshtein) Description() string {
	return "Raw token-level Levenshtein edit distance between reference and " +
		"hypothesis. The dataset value is the sum over examples."
}

func (Levenshtein) Compute(s Sample) (Result, error) {
	ops, err := s.Alignment(Token)
	if err != nil {
		return Result{}, err
	}
	counts := opCounts(ops)
	return NewResult("levenshtein", float64(counts[CountEdits]), counts), nil
}

func (Levenshtein) Aggregate(results []Result) (Result, error) {
	counts := map[string]int{}
	for _, r := range results {
		for k, v := range r.Counts {
			counts[k] += v
		}
	}
	return NewResult("levenshtein", float64(counts[CountEdits]), counts), nil
}

// ratioFromOps builds the edits/ref-length ratio result shared by WER and
// CER, reporting undefined on an empty reference.
func ratioFromOps(name string, ops []align.Op[string]) Result {
	counts := opCounts(ops)
	refLen := counts[CountRefLength]
	if refLen == 0 {
		return Undefined(name, counts)
	}
	return NewResult(name, float64(counts[CountEdits])/float64(refLen), counts)
}

func opCounts(ops []align.Op[string]) map[string]int {
	c := align.Tally(ops)
	return map[string]int{
		CountMatches:       c.Matches,
		CountSubstitutions: c.Substitutions,
		CountInsertions:    c.Insertions,
		CountDeletions:     c.Deletions,
		CountEdits:         c.Edits(),
		CountRefLength:     c.RefLength(),
		CountHypLength:     c.HypLength(),
	}
}
