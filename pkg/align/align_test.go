package align_test

import (
	"strings"
	"testing"

	"github.com/werbench/werbench/pkg/align"
)

func words(s string) []string {
	return strings.Fields(s)
}

func TestAlign_ClassicScenario(t *testing.T) {
	t.Parallel()

	ref := words("the cat sat")
	hyp := words("a cat sat down")

	ops := align.Align(ref, hyp)

	want := []align.Op[string]{
		{Kind: align.Substitute, Ref: "the", Hyp: "a", RefIndex: 0, HypIndex: 0},
		{Kind: align.Match, Ref: "cat", Hyp: "cat", RefIndex: 1, HypIndex: 1},
		{Kind: align.Match, Ref: "sat", Hyp: "sat", RefIndex: 2, HypIndex: 2},
		{Kind: align.Insert, Hyp: "down", RefIndex: -1, HypIndex: 3},
	}
	if len(ops) != len(want) {
		t.Fatalf("Align: got %d ops, want %d: %v", len(ops), len(want), ops)
	}
	for i, op := range ops {
		if op != want[i] {
			t.Errorf("op[%d] = %+v, want %+v", i, op, want[i])
		}
	}

	counts := align.Tally(ops)
	if counts.Edits() != 2 {
		t.Errorf("Edits() = %d, want 2", counts.Edits())
	}
}

func TestAlign_EmptySequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  []string
		hyp  []string
		want align.Counts
	}{
		{"both empty", nil, nil, align.Counts{}},
		{"empty ref", nil, words("hi there"), align.Counts{Insertions: 2}},
		{"empty hyp", words("hi there"), nil, align.Counts{Deletions: 2}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ops := align.Align(tt.ref, tt.hyp)
			if got := align.Tally(ops); got != tt.want {
				t.Errorf("Tally(Align(%v, %v)) = %+v, want %+v", tt.ref, tt.hyp, got, tt.want)
			}
		})
	}
}

func TestAlign_Identity(t *testing.T) {
	t.Parallel()

	for _, ref := range [][]string{nil, words("one"), words("one two three four")} {
		ops := align.Align(ref, ref)
		counts := align.Tally(ops)
		if counts.Edits() != 0 {
			t.Errorf("Align(A, A) with A=%v: edits = %d, want 0", ref, counts.Edits())
		}
		if counts.Matches != len(ref) {
			t.Errorf("Align(A, A) with A=%v: matches = %d, want %d", ref, counts.Matches, len(ref))
		}
	}
}

// TestAlign_Reconstruction checks that reading the reference side of
// match/substitute/delete ops in order reproduces the reference, and the
// hypothesis side of match/substitute/insert ops reproduces the hypothesis.
func TestAlign_Reconstruction(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"the quick brown fox", "the quack brown box jumps"},
		{"a b c d e", "e d c b a"},
		{"", "x y z"},
		{"x y z", ""},
		{"same same same", "same same same"},
	}
	for _, pair := range pairs {
		ref, hyp := words(pair[0]), words(pair[1])
		ops := align.Align(ref, hyp)

		var gotRef, gotHyp []string
		for _, op := range ops {
			if op.Kind == align.Match || op.Kind == align.Substitute || op.Kind == align.Delete {
				gotRef = append(gotRef, op.Ref)
			}
			if op.Kind == align.Match || op.Kind == align.Substitute || op.Kind == align.Insert {
				gotHyp = append(gotHyp, op.Hyp)
			}
		}
		if strings.Join(gotRef, " ") != pair[0] {
			t.Errorf("ref reconstruction for %q vs %q: got %q", pair[0], pair[1], strings.Join(gotRef, " "))
		}
		if strings.Join(gotHyp, " ") != pair[1] {
			t.Errorf("hyp reconstruction for %q vs %q: got %q", pair[0], pair[1], strings.Join(gotHyp, " "))
		}
	}
}

// TestAlign_DistanceSymmetry checks that edit distance is symmetric even
// though operation kinds swap insert and delete.
func TestAlign_DistanceSymmetry(t *testing.T) {
	t.Parallel()

	a := words("the quick brown fox jumps over")
	b := words("quick brown dog leaps over it")

	fwd := align.Tally(align.Align(a, b))
	rev := align.Tally(align.Align(b, a))

	if fwd.Edits() != rev.Edits() {
		t.Errorf("edit distance not symmetric: %d vs %d", fwd.Edits(), rev.Edits())
	}
	if fwd.Insertions != rev.Deletions || fwd.Deletions != rev.Insertions {
		t.Errorf("insert/delete did not swap: fwd=%+v rev=%+v", fwd, rev)
	}
}

func TestAlign_TieBreakPrefersDeletion(t *testing.T) {
	t.Parallel()

	// "a b" vs "b": deleting "a" and matching "b" ties with substituting
	// "a"→"b" and deleting "b". The fixed policy must pick the deletion of
	// "a" followed by the match.
	ops := align.Align(words("a b"), words("b"))
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2: %v", len(ops), ops)
	}
	if ops[0].Kind != align.Delete || ops[0].Ref != "a" {
		t.Errorf("ops[0] = %+v, want Delete(a)", ops[0])
	}
	if ops[1].Kind != align.Match || ops[1].Ref != "b" {
		t.Errorf("ops[1] = %+v, want Match(b)", ops[1])
	}
}

func TestDistance_MatchesAlign(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"the cat sat", "a cat sat down"},
		{"", "a b"},
		{"a b", ""},
		{"x", "x"},
		{"one two three", "three two one"},
	}
	for _, pair := range pairs {
		ref, hyp := words(pair[0]), words(pair[1])
		d := align.Distance(ref, hyp)
		e := align.Tally(align.Align(ref, hyp)).Edits()
		if d != e {
			t.Errorf("Distance(%q, %q) = %d, Align edits = %d", pair[0], pair[1], d, e)
		}
	}
}

func TestDistance_Runes(t *testing.T) {
	t.Parallel()

	if d := align.Distance([]rune("kitten"), []rune("sitting")); d != 3 {
		t.Errorf("Distance(kitten, sitting) = %d, want 3", d)
	}
}
