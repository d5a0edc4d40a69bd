package complete

import (
	"fmt"
	"sort"

	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// lpContext is one warm-start slot: an oracle whose loaded row set is
// incrementally diffed against each incomplete derivation's active set,
// plus the two-way map between oracle rows and certificate indices. A
// context is exclusively owned by whichever worker dequeued it from the
// ring buffer.
type lpContext struct {
	oracle Oracle
	// rowToCert[i] is the certificate index loaded as oracle row i;
	// certToRow is its inverse.
	rowToCert []int
	certToRow map[int]int
}

// newLPContext loads the certificate's variables as free columns and the
// CON section as the initial row set.
func newLPContext(oracle Oracle, m *cert.Model) *lpContext {
	for range m.Variables {
		oracle.AddColumn(nil, nil)
	}
	ctx := &lpContext{oracle: oracle, certToRow: make(map[int]int, len(m.Constraints))}
	for i, con := range m.Constraints {
		addConstraintRow(oracle, con)
		ctx.rowToCert = append(ctx.rowToCert, i)
		ctx.certToRow[i] = len(ctx.rowToCert) - 1
	}
	return ctx
}

func addConstraintRow(oracle Oracle, con *cert.Constraint) {
	switch con.Sense {
	case cert.EQ:
		oracle.AddRow(con.Coefs, con.RHS, con.RHS)
	case cert.LE:
		oracle.AddRow(con.Coefs, nil, con.RHS)
	case cert.GE:
		oracle.AddRow(con.Coefs, con.RHS, nil)
	}
}

// syncActiveSet diffs the loaded rows against the declared active set:
// rows no longer active are removed, newly active certificate indices are
// appended, and the index map is rebuilt accordingly.
func (ctx *lpContext) syncActiveSet(active []int, cons []*cert.Constraint, label string) error {
	want := make(map[int]struct{}, len(active))
	for _, idx := range active {
		if idx < 0 || idx >= len(cons) {
			return cerrors.New(cerrors.IndexError, label, fmt.Sprintf("active-set index %d out of range", idx))
		}
		want[idx] = struct{}{}
	}

	drop := make([]bool, len(ctx.rowToCert))
	removing := false
	for row, certIdx := range ctx.rowToCert {
		if _, ok := want[certIdx]; !ok {
			drop[row] = true
			removing = true
		}
	}
	if removing {
		newPos := ctx.oracle.RemoveRows(drop)
		kept := make([]int, 0, len(ctx.rowToCert))
		for row, certIdx := range ctx.rowToCert {
			if newPos[row] >= 0 {
				kept = append(kept, certIdx)
			}
		}
		ctx.rowToCert = kept
		ctx.certToRow = make(map[int]int, len(kept))
		for row, certIdx := range kept {
			ctx.certToRow[certIdx] = row
		}
	}

	toAdd := make([]int, 0)
	for idx := range want {
		if _, loaded := ctx.certToRow[idx]; !loaded {
			toAdd = append(toAdd, idx)
		}
	}
	sort.Ints(toAdd)
	for _, idx := range toAdd {
		addConstraintRow(ctx.oracle, cons[idx])
		ctx.rowToCert = append(ctx.rowToCert, idx)
		ctx.certToRow[idx] = len(ctx.rowToCert) - 1
	}
	return nil
}

// completeIncomplete reconstructs the multipliers of an incomplete "lin"
// derivation by solving the local LP over the declared active set. On a
// non-terminal oracle status it returns an OracleError and
// leaves the derivation untouched; the engine records the warning and
// moves on.
func completeIncomplete(ctx *lpContext, der *cert.Derivation, cons []*cert.Constraint) error {
	declared := der.Declared
	lin := der.Reason.Lin
	label := declared.Label

	if err := ctx.syncActiveSet(lin.ActiveSet, cons, label); err != nil {
		return err
	}

	// Deriving c.x >= rhs needs the minimum of c.x over the active rows;
	// c.x <= rhs needs the maximum.
	minimize := declared.Sense >= cert.EQ
	ctx.oracle.SetObjective(declared.Coefs, minimize)

	status := ctx.oracle.Solve()
	if status != Optimal && status != Infeasible {
		return cerrors.New(cerrors.OracleError, label,
			fmt.Sprintf("oracle returned status %s; leaving derivation incomplete", status))
	}

	mult := make(map[int]*rational.Rational)
	accumulate := func(idx int, v *rational.Rational) {
		if v.Sign() == 0 {
			return
		}
		cur, ok := mult[idx]
		if !ok {
			cur = rational.Zero()
		}
		mult[idx] = rational.Add(cur, v)
	}
	// Reduced costs are added at the certificate index equal to their
	// column index; no bound row is looked up for them. Every column is
	// loaded free (newLPContext), so at a terminal solve they are zero.
	// Dual multipliers map through the index map to certificate indices.
	for j, rc := range ctx.oracle.ReducedCosts() {
		accumulate(j, rc)
	}
	for row, d := range ctx.oracle.Duals() {
		accumulate(ctx.rowToCert[row], d)
	}

	lin.Multipliers = mult
	lin.Incomplete = false
	lin.ActiveSet = nil
	return nil
}
