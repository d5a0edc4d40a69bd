// Package cerrors defines the error taxonomy shared by the parser, the
// constraint algebra, the derivation checker and the completion engine.
// Kinds are distinguished, not type names exposed to callers: use KindOf
// or IsKind with the Kind values below.
package cerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the taxonomy's error categories.
type Kind int

const (
	// ParseError: malformed tokens, unexpected section, version mismatch.
	ParseError Kind = iota
	// IndexError: out-of-range variable/constraint index, or a reference
	// to a trashed constraint.
	IndexError
	// AlgebraError: sign conflict among multipliers, rounding a
	// noninteger coefficient or variable, unsplit with incompatible
	// senses or a nonintegral disjunction.
	AlgebraError
	// DerivationMismatch: the reconstructed constraint does not dominate
	// the declared one.
	DerivationMismatch
	// SolutionViolation: a declared solution violates a constraint or
	// integrality.
	SolutionViolation
	// BoundViolation: best solution value exceeds a claimed primal
	// bound.
	BoundViolation
	// OracleError: the LP oracle returned a non-terminal status during
	// completion. The only kind the completion engine tolerates
	// per-derivation rather than treating as fatal.
	OracleError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case IndexError:
		return "IndexError"
	case AlgebraError:
		return "AlgebraError"
	case DerivationMismatch:
		return "DerivationMismatch"
	case SolutionViolation:
		return "SolutionViolation"
	case BoundViolation:
		return "BoundViolation"
	case OracleError:
		return "OracleError"
	default:
		return "UnknownError"
	}
}

// Error is a taxonomy-tagged error, optionally wrapping a lower-level
// cause (a malformed-number error, an arithmetic error, etc).
type Error struct {
	Kind  Kind
	Label string // derivation or constraint label, when known
	cause error
}

func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Label, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

// Unwrap lets errors.Is/errors.As reach the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause is the pkg/errors counterpart of Unwrap, followed by errors.Cause.
func (e *Error) Cause() error { return e.cause }

// New builds a taxonomy error of the given kind wrapping msg.
func New(kind Kind, label, msg string) error {
	return &Error{Kind: kind, Label: label, cause: errors.New(msg)}
}

// Wrap builds a taxonomy error of the given kind wrapping cause with msg.
func Wrap(kind Kind, label string, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Label: label, cause: errors.Wrap(cause, msg)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, label string, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Label: label, cause: errors.Wrapf(cause, format, args...)}
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err's kind is k.
func IsKind(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
