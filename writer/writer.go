/*
Package writer re-emits a parsed certificate as text. The
output reproduces the input modulo whitespace, except that completed
derivations carry their full multiplier list in place of the original
"incomplete" or "weak" payload.

The reconstruction walks the model rather than re-tokenizing the input.
*/
package writer

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Write emits m to w in certificate syntax.
func Write(w io.Writer, m *cert.Model) error {
	bw := bufio.NewWriter(w)
	out := &emitter{w: bw}

	out.printf("VER %d.%d\n", m.MajorVersion, m.MinorVersion)

	out.printf("VAR %d\n", len(m.Variables))
	for _, v := range m.Variables {
		out.printf("%s\n", v.Name)
	}

	ints := make([]int, 0, len(m.IntSet))
	for idx := range m.IntSet {
		ints = append(ints, idx)
	}
	sort.Ints(ints)
	out.printf("INT %d\n", len(ints))
	for _, idx := range ints {
		out.printf("%d ", idx)
	}
	if len(ints) > 0 {
		out.printf("\n")
	}

	sense := "min"
	if m.Objective.Sense == cert.Maximize {
		sense = "max"
	}
	out.printf("OBJ %s\n", sense)
	out.vector(m.Objective.Coefs)
	out.printf("\n")

	out.printf("CON %d %d\n", len(m.Constraints), m.NumBounds)
	for _, con := range m.Constraints {
		out.constraint(con)
		out.printf("\n")
	}

	switch m.RTP.Kind {
	case cert.Infeasible:
		out.printf("RTP infeas\n")
	case cert.Range:
		lo, hi := "-inf", "inf"
		if m.RTP.HasLower() {
			lo = m.RTP.Lower.String()
		}
		if m.RTP.HasUpper() {
			hi = m.RTP.Upper.String()
		}
		out.printf("RTP range %s %s\n", lo, hi)
	}

	out.printf("SOL %d\n", len(m.Solutions))
	for _, sol := range m.Solutions {
		out.printf("%s ", sol.Label)
		out.vector(sol.Values)
		out.printf("\n")
	}

	out.printf("DER %d\n", len(m.Derivations))
	for _, der := range m.Derivations {
		out.derivation(der)
	}

	if out.err != nil {
		return out.err
	}
	return bw.Flush()
}

type emitter struct {
	w   *bufio.Writer
	err error
}

func (e *emitter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// vector emits "k idx1 val1 ... idxk valk" in index order.
func (e *emitter) vector(v *rational.Vector) {
	support := v.Support()
	e.printf("%d", len(support))
	for _, idx := range support {
		e.printf(" %d %s", idx, v.Get(idx))
	}
}

// constraint emits "label sense rhs <coefs>", with the literal OBJ when
// the constraint shares the objective's coefficient vector.
func (e *emitter) constraint(con *cert.Constraint) {
	e.printf("%s %s %s ", con.Label, con.Sense, con.RHS)
	if con.DerivedEqualsObjective {
		e.printf("OBJ")
		return
	}
	e.vector(con.Coefs)
}

func (e *emitter) derivation(der *cert.Derivation) {
	e.constraint(der.Declared)
	e.printf(" { ")
	switch der.Reason.Kind {
	case cert.ReasonAsm:
		e.printf("asm")
	case cert.ReasonSol:
		e.printf("sol")
	case cert.ReasonLin, cert.ReasonRnd:
		kind := "lin"
		if der.Reason.Kind == cert.ReasonRnd {
			kind = "rnd"
		}
		e.printf("%s ", kind)
		e.linPayload(der.Reason.Lin)
	case cert.ReasonUns:
		uns := der.Reason.Unsplit
		e.printf("uns %d %d %d %d", uns.C1, uns.A1, uns.C2, uns.A2)
	}
	e.printf(" } %d\n", der.MaxRefIdx)
}

func (e *emitter) linPayload(lin *cert.LinReason) {
	switch {
	case lin.Incomplete:
		e.printf("incomplete")
		for _, idx := range lin.ActiveSet {
			e.printf(" %d", idx)
		}
	case lin.Weak:
		e.printf("weak { %d", len(lin.WeakBounds))
		for _, b := range lin.WeakBounds {
			kind := "L"
			if b.Kind == cert.UpperBound {
				kind = "U"
			}
			e.printf(" %s %d %d %s", kind, b.VarIdx, b.BoundRef, b.Value)
		}
		e.printf(" } ")
		e.multipliers(lin.Multipliers)
	default:
		e.multipliers(lin.Multipliers)
	}
}

func (e *emitter) multipliers(mult map[int]*rational.Rational) {
	idxs := make([]int, 0, len(mult))
	for idx := range mult {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	e.printf("%d", len(idxs))
	for _, idx := range idxs {
		e.printf(" %d %s", idx, mult[idx])
	}
}
