// Package text provides the staged transcript representation used by the
// metrics engine: an immutable raw string from which standardized text,
// tokens and normalized tokens are derived lazily, each stage computed at
// most once per instance.
//
// Stages are produced by a [Pipeline] of named transformation functions
// resolved by name from the package registry (see registry.go). An empty
// pipeline is a pass-through: standardization returns the raw string,
// tokenization splits on whitespace, normalization returns tokens unchanged.
package text

import (
	"fmt"
	"strings"
)

// Stage identifies one derivation step of a [StagedText].
type Stage int

const (
	StageStandardize Stage = iota
	StageTokenize
	StageNormalize
)

// String returns the stage name as used in error messages and logs.
func (s Stage) String() string {
	switch s {
	case StageStandardize:
		return "standardize"
	case StageTokenize:
		return "tokenize"
	case StageNormalize:
		return "normalize"
	}
	return "unknown"
}

// PipelineError reports a transformation failure during stage derivation.
// It names the failing stage and function so the pipeline or input can be
// corrected; the stage that failed is left uncached and the access can be
// retried.
type PipelineError struct {
	Stage Stage
	Func  string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("text: %s stage, function %q: %v", e.Stage, e.Func, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Transform is a unary string transformation applied during standardization
// or, per token, during normalization.
type Transform func(string) (string, error)

// Tokenizer splits a standardized string into an ordered token sequence.
type Tokenizer func(string) ([]string, error)

// NamedTransform pairs a transform with the registry name it was resolved
// under, for error reporting.
type NamedTransform struct {
	Name string
	Fn   Transform
}

// NamedTokenizer pairs a tokenizer with its registry name.
type NamedTokenizer struct {
	Name string
	Fn   Tokenizer
}

// Pipeline is the ordered set of transformations a [StagedText] applies:
// standardizer chain on the raw string, one tokenizer on the standardized
// string, normalizer chain on each token. Any part may be empty.
type Pipeline struct {
	Standardizers []NamedTransform
	Tokenizer     NamedTokenizer
	Normalizers   []NamedTransform
}

// DefaultPipeline returns the pipeline used when no configuration selects
// one: NFC standardization and lowercasing, whitespace tokenization, and
// punctuation stripping per token.
func DefaultPipeline() Pipeline {
	std, err := ResolveTransforms([]string{"nfc", "lowercase"})
	if err != nil {
		panic(err) // built-ins are always registered
	}
	tok, err := ResolveTokenizer("whitespace")
	if err != nil {
		panic(err)
	}
	norm, err := ResolveTransforms([]string{"strip_punct"})
	if err != nil {
		panic(err)
	}
	return Pipeline{Standardizers: std, Tokenizer: tok, Normalizers: norm}
}

// StagedText wraps one raw transcript string and derives its preprocessing
// stages on demand. Once a stage has been computed its value never changes
// for the lifetime of the instance. A failed derivation is not cached, so a
// later access retries.
//
// A StagedText is not safe for concurrent use. During parallel evaluation
// each example, and therefore each of its texts, is owned by exactly one
// goroutine.
type StagedText struct {
	raw      string
	pipeline Pipeline

	standardized    string
	hasStandardized bool

	tokens    []string
	hasTokens bool

	normalized    []string
	hasNormalized bool
}

// New creates a StagedText over raw using pipeline p. The raw string may be
// empty; it must not change after construction (strings are immutable, so
// this holds by construction).
func New(raw string, p Pipeline) *StagedText {
	return &StagedText{raw: raw, pipeline: p}
}

// Raw returns the original string.
func (t *StagedText) Raw() string { return t.raw }

// Pipeline returns the pipeline the stages derive through.
func (t *StagedText) Pipeline() Pipeline { return t.pipeline }

// Standardized returns the raw string after the standardizer chain,
// computing and caching it on first access.
func (t *StagedText) Standardized() (string, error) {
	if t.hasStandardized {
		return t.standardized, nil
	}
	s := t.raw
	for _, tr := range t.pipeline.Standardizers {
		out, err := tr.Fn(s)
		if err != nil {
			return "", &PipelineError{Stage: StageStandardize, Func: tr.Name, Err: err}
		}
		s = out
	}
	t.standardized = s
	t.hasStandardized = true
	return s, nil
}

// Tokens returns the ordered token sequence produced by the tokenizer from
// the standardized string, computing and caching it on first access.
func (t *StagedText) Tokens() ([]string, error) {
	if t.hasTokens {
		return t.tokens, nil
	}
	s, err := t.Standardized()
	if err != nil {
		return nil, err
	}
	var tokens []string
	if t.pipeline.Tokenizer.Fn == nil {
		tokens = strings.Fields(s)
	} else {
		tokens, err = t.pipeline.Tokenizer.Fn(s)
		if err != nil {
			return nil, &PipelineError{Stage: StageTokenize, Func: t.pipeline.Tokenizer.Name, Err: err}
		}
	}
	t.tokens = tokens
	t.hasTokens = true
	return tokens, nil
}

// NormalizedTokens returns the token sequence after the per-token normalizer
// chain, computing and caching it on first access. Tokens that normalize to
// the empty string are kept, preserving index parity with Tokens.
func (t *StagedText) NormalizedTokens() ([]string, error) {
	if t.hasNormalized {
		return t.normalized, nil
	}
	tokens, err := t.Tokens()
	if err != nil {
		return nil, err
	}
	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		s := tok
		for _, tr := range t.pipeline.Normalizers {
			out, err := tr.Fn(s)
			if err != nil {
				return nil, &PipelineError{Stage: StageNormalize, Func: tr.Name, Err: err}
			}
			s = out
		}
		normalized[i] = s
	}
	t.normalized = normalized
	t.hasNormalized = true
	return normalized, nil
}
