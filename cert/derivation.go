package cert

import "github.com/crillab/vipr/rational"

// ReasonKind identifies which derivation rule produced a Derivation.
type ReasonKind int

const (
	// ReasonAsm declares the constraint as a fresh assumption.
	ReasonAsm ReasonKind = iota
	// ReasonLin derives from a linear combination of earlier constraints.
	ReasonLin
	// ReasonRnd is ReasonLin followed by integer rounding of the rhs.
	ReasonRnd
	// ReasonUns unsplits two dominating branches of an integer disjunction.
	ReasonUns
	// ReasonSol is a cutoff bound derived from the best primal solution.
	ReasonSol
)

// BoundKind distinguishes which variable bound a weak-completion entry
// corrects with.
type BoundKind int

const (
	// LowerBound corrects using the variable's lower bound.
	LowerBound BoundKind = iota
	// UpperBound corrects using the variable's upper bound.
	UpperBound
)

// WeakBoundEntry is one "type varIdx boundRef value" entry in a weak
// payload: which bound to use for a given variable, referencing either a
// declared bound-row constraint (BoundRef >= 0) or the global bound table
// (BoundRef < 0, meaning "look it up").
type WeakBoundEntry struct {
	VarIdx   int
	Kind     BoundKind
	BoundRef int // certificate index of the bound-row constraint, or -1
	Value    *rational.Rational
}

// LinReason is the payload of a "lin" or "rnd" derivation.
type LinReason struct {
	// Multipliers maps a referenced constraint's certificate index to its
	// rational multiplier. Nil (not just empty) when Incomplete is true.
	Multipliers map[int]*rational.Rational

	Incomplete bool
	// ActiveSet holds the declared active constraint indices when
	// Incomplete is true.
	ActiveSet []int

	Weak       bool
	WeakBounds []WeakBoundEntry // declared bound-correction entries ("weak { n type idx bref val ... }")
}

// UnsplitReason is the payload of a "uns" derivation.
type UnsplitReason struct {
	C1, A1 int // first dominating constraint and its branch assumption
	C2, A2 int // second dominating constraint and its branch assumption
}

// Reason tags a Derivation with which rule produced it and that rule's
// payload. Exactly one of Lin/Unsplit is meaningful, selected by Kind.
type Reason struct {
	Kind    ReasonKind
	Lin     *LinReason
	Unsplit *UnsplitReason
}

// Derivation is one DER record: the declared derived constraint, the
// reason that's supposed to produce it, and the trailing max-reference
// index.
type Derivation struct {
	Declared  *Constraint
	Reason    Reason
	MaxRefIdx int
}
