// Package align implements minimum-edit alignment between two sequences of
// comparable units, the core primitive behind word and character error rate.
//
// [Align] runs the classic dynamic-programming edit distance over a
// (len(ref)+1) × (len(hyp)+1) cost table with unit costs (match 0,
// substitution 1, insertion 1, deletion 1) and backtraces a deterministic
// operation sequence. Because multiple minimum-cost alignments usually exist,
// the backtrace applies a fixed tie-break: a diagonal move (match or
// substitution) wins over an edge move, and deletion wins over insertion.
// This keeps alignments reproducible across runs, which test fixtures and
// stored reports depend on.
//
// [Distance] is the memory-light companion for callers that only need the
// edit count: it keeps two table rows instead of the full table.
//
// Both functions are total (any two finite sequences align, including empty
// ones) and allocate O(len(ref)·len(hyp)) respectively O(min) memory.
package align

// Kind identifies the type of a single alignment operation.
type Kind int

const (
	// Match pairs equal reference and hypothesis units.
	Match Kind = iota

	// Substitute pairs unequal reference and hypothesis units.
	Substitute

	// Insert consumes a hypothesis unit with no reference counterpart.
	Insert

	// Delete consumes a reference unit with no hypothesis counterpart.
	Delete
)

// String returns the lower-case name of the operation kind.
func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Op is one step of an alignment. For Insert operations the reference side is
// absent: Ref holds the zero value and RefIndex is -1. For Delete operations
// the hypothesis side is absent in the same way. Reading the reference side
// of every Match, Substitute and Delete op in order reproduces the reference
// sequence exactly; the hypothesis side of every Match, Substitute and Insert
// op reproduces the hypothesis.
type Op[U comparable] struct {
	Kind     Kind
	Ref      U
	Hyp      U
	RefIndex int
	HypIndex int
}

// Counts tallies alignment operations by kind.
type Counts struct {
	Matches       int
	Substitutions int
	Insertions    int
	Deletions     int
}

// Edits returns the total number of error operations. It equals the edit
// distance of the aligned sequences.
func (c Counts) Edits() int {
	return c.Substitutions + c.Insertions + c.Deletions
}

// RefLength returns the number of reference units covered by the alignment.
func (c Counts) RefLength() int {
	return c.Matches + c.Substitutions + c.Deletions
}

// HypLength returns the number of hypothesis units covered by the alignment.
func (c Counts) HypLength() int {
	return c.Matches + c.Substitutions + c.Insertions
}

// Tally counts the operations in ops by kind.
func Tally[U comparable](ops []Op[U]) Counts {
	var c Counts
	for _, op := range ops {
		switch op.Kind {
		case Match:
			c.Matches++
		case Substitute:
			c.Substitutions++
		case Insert:
			c.Insertions++
		case Delete:
			c.Deletions++
		}
	}
	return c
}

// Align computes a minimum-cost edit alignment between ref and hyp and
// returns the operation sequence in left-to-right order.
//
// Tie-break on equal cost: match/substitution over insertion/deletion, then
// deletion over insertion. An empty ref yields all-Insert ops, an empty hyp
// all-Delete ops, two empty sequences an empty (nil-safe) op list.
func Align[U comparable](ref, hyp []U) []Op[U] {
	n, m := len(ref), len(hyp)

	// Cost table, flattened: cell (i,j) at i*(m+1)+j.
	width := m + 1
	table := make([]int, (n+1)*width)
	for j := 1; j <= m; j++ {
		table[j] = j
	}
	for i := 1; i <= n; i++ {
		table[i*width] = i
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := table[(i-1)*width+j-1]
			if ref[i-1] != hyp[j-1] {
				sub++
			}
			del := table[(i-1)*width+j] + 1
			ins := table[i*width+j-1] + 1
			table[i*width+j] = min(sub, del, ins)
		}
	}

	// Backtrace from (n,m). Ops come out reversed.
	ops := make([]Op[U], 0, max(n, m))
	i, j := n, m
	for i > 0 || j > 0 {
		cur := table[i*width+j]
		switch {
		case i > 0 && j > 0 && equalOrSubStep(table, width, i, j, cur, ref[i-1] == hyp[j-1]):
			kind := Match
			if ref[i-1] != hyp[j-1] {
				kind = Substitute
			}
			ops = append(ops, Op[U]{Kind: kind, Ref: ref[i-1], Hyp: hyp[j-1], RefIndex: i - 1, HypIndex: j - 1})
			i--
			j--
		case i > 0 && table[(i-1)*width+j]+1 == cur:
			var zero U
			ops = append(ops, Op[U]{Kind: Delete, Ref: ref[i-1], Hyp: zero, RefIndex: i - 1, HypIndex: -1})
			i--
		default:
			var zero U
			ops = append(ops, Op[U]{Kind: Insert, Ref: zero, Hyp: hyp[j-1], RefIndex: -1, HypIndex: j - 1})
			j--
		}
	}

	// Reverse in place to restore left-to-right order.
	for a, b := 0, len(ops)-1; a < b; a, b = a+1, b-1 {
		ops[a], ops[b] = ops[b], ops[a]
	}
	return ops
}

// equalOrSubStep reports whether the diagonal move into (i,j) is consistent
// with the minimal cost at (i,j).
func equalOrSubStep(table []int, width, i, j, cur int, equal bool) bool {
	cost := table[(i-1)*width+j-1]
	if !equal {
		cost++
	}
	return cost == cur
}

// Distance returns the edit distance between a and b without materialising
// an operation sequence. It uses two table rows, so memory stays linear in
// len(b); prefer it when only the count is needed.
func Distance[U comparable](a, b []U) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			cur[j] = min(sub, prev[j]+1, cur[j-1]+1)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
