package text

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/unicode/norm"
)

// Built-in transforms and tokenizers, registered at init. Names match the
// values accepted in the pipeline section of the YAML configuration.
func init() {
	RegisterTransform("lowercase", func(s string) (string, error) {
		return strings.ToLower(s), nil
	})
	RegisterTransform("nfc", func(s string) (string, error) {
		return norm.NFC.String(s), nil
	})
	RegisterTransform("nfkc", func(s string) (string, error) {
		return norm.NFKC.String(s), nil
	})
	RegisterTransform("collapse_whitespace", func(s string) (string, error) {
		return strings.Join(strings.Fields(s), " "), nil
	})
	RegisterTransform("strip_punct", stripPunct)
	RegisterTransform("remove_symbols", removeSymbols)
	RegisterTransform("metaphone", metaphone)

	RegisterTokenizer("whitespace", func(s string) ([]string, error) {
		return strings.Fields(s), nil
	})
	RegisterTokenizer("letters_digits", lettersDigits)
}

// stripPunct trims leading and trailing Unicode punctuation. '&' and '%'
// are kept: they carry lexical content in transcripts ("AT&T", "50%").
func stripPunct(s string) (string, error) {
	trim := func(r rune) bool {
		return unicode.IsPunct(r) && r != '&' && r != '%'
	}
	return strings.TrimFunc(s, trim), nil
}

// removeSymbols drops Unicode symbol runes (category S) anywhere in the
// string.
func removeSymbols(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSymbol(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// metaphone replaces a token with its primary Double Metaphone code, making
// downstream alignment phonetics-aware. Tokens that produce no code (too
// short, no consonants) pass through lowercased so they still align by
// spelling.
func metaphone(s string) (string, error) {
	primary, _ := matchr.DoubleMetaphone(s)
	if primary == "" {
		return strings.ToLower(s), nil
	}
	return primary, nil
}

// lettersDigitsPattern matches runs of letters and digits, allowing internal
// punctuation or symbols when flanked by letters/digits on both sides
// ("don't", "3.14", "o'clock" stay single tokens).
var lettersDigitsPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[\p{P}\p{S}\p{M}]+[\p{L}\p{N}]+)*`)

func lettersDigits(s string) ([]string, error) {
	return lettersDigitsPattern.FindAllString(s, -1), nil
}
