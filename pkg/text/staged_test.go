package text_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/werbench/werbench/pkg/text"
)

// init registers helper transforms used only by tests. Registration is
// process-wide, so names are prefixed to avoid clashing with built-ins.
func init() {
	text.RegisterTransform("test_fail_on_x", func(s string) (string, error) {
		if strings.Contains(s, "x") {
			return "", errors.New("boom")
		}
		return s, nil
	})
}

func mustPipeline(t *testing.T, std []string, tok string, norm []string) text.Pipeline {
	t.Helper()
	s, err := text.ResolveTransforms(std)
	if err != nil {
		t.Fatalf("ResolveTransforms(%v): %v", std, err)
	}
	tk, err := text.ResolveTokenizer(tok)
	if err != nil {
		t.Fatalf("ResolveTokenizer(%q): %v", tok, err)
	}
	n, err := text.ResolveTransforms(norm)
	if err != nil {
		t.Fatalf("ResolveTransforms(%v): %v", norm, err)
	}
	return text.Pipeline{Standardizers: s, Tokenizer: tk, Normalizers: n}
}

func TestStagedText_PassThrough(t *testing.T) {
	t.Parallel()

	st := text.New("Hello,  World!", text.Pipeline{})

	std, err := st.Standardized()
	if err != nil {
		t.Fatalf("Standardized: %v", err)
	}
	if std != "Hello,  World!" {
		t.Errorf("Standardized = %q, want raw string unchanged", std)
	}

	tokens, err := st.Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if !reflect.DeepEqual(tokens, []string{"Hello,", "World!"}) {
		t.Errorf("Tokens = %v, want whitespace split", tokens)
	}

	norm, err := st.NormalizedTokens()
	if err != nil {
		t.Fatalf("NormalizedTokens: %v", err)
	}
	if !reflect.DeepEqual(norm, tokens) {
		t.Errorf("NormalizedTokens = %v, want same as Tokens for empty chain", norm)
	}
}

func TestStagedText_DefaultPipeline(t *testing.T) {
	t.Parallel()

	st := text.New("The CAT, sat.", text.DefaultPipeline())

	norm, err := st.NormalizedTokens()
	if err != nil {
		t.Fatalf("NormalizedTokens: %v", err)
	}
	want := []string{"the", "cat", "sat"}
	if !reflect.DeepEqual(norm, want) {
		t.Errorf("NormalizedTokens = %v, want %v", norm, want)
	}
}

// TestStagedText_ComputedOnce verifies the memoization contract: a stage's
// transform runs exactly once no matter how often the stage is read.
func TestStagedText_ComputedOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	counting := text.NamedTransform{
		Name: "counting",
		Fn: func(s string) (string, error) {
			calls++
			return strings.ToUpper(s), nil
		},
	}
	st := text.New("hello world", text.Pipeline{Standardizers: []text.NamedTransform{counting}})

	for i := 0; i < 5; i++ {
		got, err := st.Standardized()
		if err != nil {
			t.Fatalf("Standardized: %v", err)
		}
		if got != "HELLO WORLD" {
			t.Fatalf("Standardized = %q, want HELLO WORLD", got)
		}
	}
	if calls != 1 {
		t.Errorf("standardizer ran %d times, want 1", calls)
	}
}

func TestStagedText_PipelineError(t *testing.T) {
	t.Parallel()

	p := mustPipeline(t, []string{"test_fail_on_x"}, "", nil)
	st := text.New("an x appears", p)

	_, err := st.Tokens()
	if err == nil {
		t.Fatal("Tokens: expected error from failing standardizer")
	}
	var perr *text.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *text.PipelineError", err)
	}
	if perr.Stage != text.StageStandardize {
		t.Errorf("Stage = %v, want standardize", perr.Stage)
	}
	if perr.Func != "test_fail_on_x" {
		t.Errorf("Func = %q, want test_fail_on_x", perr.Func)
	}

	// The failed stage must not be cached: a second access fails again
	// rather than returning a stale value.
	if _, err := st.Standardized(); err == nil {
		t.Error("Standardized: second access returned nil error after failure")
	}
}

func TestBuiltinTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transform string
		in        string
		want      string
	}{
		{"lowercase", "HeLLo", "hello"},
		{"strip_punct", `"quoted!"`, "quoted"},
		{"strip_punct", "at&t,", "at&t"},
		{"strip_punct", "50%", "50%"},
		{"collapse_whitespace", "a   b\tc", "a b c"},
		{"remove_symbols", "5 + 3 = 8", "5  3  8"},
		{"nfc", "café", "café"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.transform+"/"+tt.in, func(t *testing.T) {
			t.Parallel()
			resolved, err := text.ResolveTransforms([]string{tt.transform})
			if err != nil {
				t.Fatalf("ResolveTransforms: %v", err)
			}
			got, err := resolved[0].Fn(tt.in)
			if err != nil {
				t.Fatalf("%s(%q): %v", tt.transform, tt.in, err)
			}
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.transform, tt.in, got, tt.want)
			}
		})
	}
}

func TestMetaphoneTransform(t *testing.T) {
	t.Parallel()

	resolved, err := text.ResolveTransforms([]string{"metaphone"})
	if err != nil {
		t.Fatalf("ResolveTransforms: %v", err)
	}
	fn := resolved[0].Fn

	// Homophones collapse to the same code.
	a, _ := fn("night")
	b, _ := fn("knight")
	if a != b {
		t.Errorf("metaphone(night) = %q, metaphone(knight) = %q, want equal", a, b)
	}
}

func TestLettersDigitsTokenizer(t *testing.T) {
	t.Parallel()

	tok, err := text.ResolveTokenizer("letters_digits")
	if err != nil {
		t.Fatalf("ResolveTokenizer: %v", err)
	}
	got, err := tok.Fn("don't stop, it's 3.14!")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []string{"don't", "stop", "it's", "3.14"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("letters_digits = %v, want %v", got, want)
	}
}

func TestResolveUnknownNames(t *testing.T) {
	t.Parallel()

	if _, err := text.ResolveTransforms([]string{"no_such_transform"}); err == nil {
		t.Error("ResolveTransforms: expected error for unknown name")
	}
	if _, err := text.ResolveTokenizer("no_such_tokenizer"); err == nil {
		t.Error("ResolveTokenizer: expected error for unknown name")
	}
}
