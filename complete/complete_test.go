package complete

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/checker"
	"github.com/crillab/vipr/parser"
	"github.com/crillab/vipr/rational"
)

// The range certificate of the checker scenarios, with C5's multipliers
// withheld in different ways.

const weakCert = `
VER 1.0
VAR 2 x y
INT 2 0 1
OBJ min 2 0 1 1 1
CON 2 0
C1 G 1 2 0 4 1 1
C2 L 2 2 0 4 1 -1
RTP range 1 1
SOL 2
feas 1 1 2
opt 1 1 1
DER 4
C3 G -1/2 1 1 1 { lin 2 0 1/2 1 -1/2 } -1
C4 G 0 1 1 1 { rnd 1 2 1 } -1
C5 G 1/4 OBJ { lin weak { 0 } 1 0 1/4 } -1
C6 G 1 OBJ { rnd 1 4 1 } -1
`

const incompleteCert = `
VER 1.0
VAR 2 x y
INT 2 0 1
OBJ min 2 0 1 1 1
CON 2 0
C1 G 1 2 0 4 1 1
C2 L 2 2 0 4 1 -1
RTP range 1 1
SOL 2
feas 1 1 2
opt 1 1 1
DER 4
C3 G -1/2 1 1 1 { lin 2 0 1/2 1 -1/2 } -1
C4 G 0 1 1 1 { rnd 1 2 1 } -1
C5 G 1/4 OBJ { lin incomplete 0 1 2 3 } -1
C6 G 1 OBJ { rnd 1 4 1 } -1
`

func parseModel(t *testing.T, src string) *cert.Model {
	t.Helper()
	m, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func recheck(t *testing.T, m *cert.Model) {
	t.Helper()
	_, err := checker.New(m, nil).Check()
	require.NoError(t, err)
}

func TestWeakCompletion(t *testing.T) {
	m := parseModel(t, weakCert)
	stats, err := NewEngine(m, Options{Threads: 1}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)
	require.Zero(t, stats.Warnings)

	lin := m.Derivations[2].Reason.Lin
	require.False(t, lin.Weak)
	require.Nil(t, lin.WeakBounds)
	// The y deficit of 3/4 is absorbed by C4 (the y >= 0 bound row at
	// certificate index 3).
	require.True(t, rational.Equal(lin.Multipliers[0], rational.FromFrac(1, 4)))
	require.True(t, rational.Equal(lin.Multipliers[3], rational.FromFrac(3, 4)))

	recheck(t, m)
}

func TestWeakCompletionLocalBoundOverride(t *testing.T) {
	// The same deficit absorbed through a locally-declared bound entry
	// instead of the global table.
	src := strings.Replace(weakCert,
		"{ lin weak { 0 } 1 0 1/4 }",
		"{ lin weak { 1 L 1 3 0 } 1 0 1/4 }", 1)
	m := parseModel(t, src)
	_, err := NewEngine(m, Options{Threads: 1}).Run(context.Background())
	require.NoError(t, err)
	require.True(t, rational.Equal(m.Derivations[2].Reason.Lin.Multipliers[3], rational.FromFrac(3, 4)))
	recheck(t, m)
}

func TestWeakCompletionEqualityRejected(t *testing.T) {
	src := strings.Replace(weakCert, "C5 G 1/4 OBJ", "C5 E 1/4 OBJ", 1)
	m := parseModel(t, src)
	_, err := NewEngine(m, Options{Threads: 1}).Run(context.Background())
	require.Error(t, err)
}

func TestWeakCompletionInfeasibilityClaim(t *testing.T) {
	// A weak falsehood: x >= 2 aggregated against an empty declared
	// vector, corrected with the upper bound x <= 1.
	src := `
VER 1.0
VAR 1 x
INT 1 0
OBJ min 1 0 1
CON 2 2
B1 G 2 1 0 1
B2 L 1 1 0 1
RTP infeas
SOL 0
DER 1
D1 G 1 0 { lin weak { 0 } 1 0 1 } -1
`
	m := parseModel(t, src)
	stats, err := NewEngine(m, Options{Threads: 1}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)

	lin := m.Derivations[0].Reason.Lin
	require.True(t, rational.Equal(lin.Multipliers[0], rational.FromInt64(1)))
	require.True(t, rational.Equal(lin.Multipliers[1], rational.FromInt64(-1)))
	recheck(t, m)
}

func TestIncompleteCompletion(t *testing.T) {
	m := parseModel(t, incompleteCert)
	stats, err := NewEngine(m, Options{Threads: 2}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)

	lin := m.Derivations[2].Reason.Lin
	require.False(t, lin.Incomplete)
	require.Nil(t, lin.ActiveSet)
	require.NotEmpty(t, lin.Multipliers)

	recheck(t, m)
}

func TestIncompleteCompletionFarkas(t *testing.T) {
	// The active rows are mutually contradictory, so the oracle reports
	// infeasibility and its Farkas multipliers derive a falsehood, which
	// dominates anything.
	src := `
VER 1.0
VAR 1 x
INT 1 0
OBJ min 1 0 1
CON 2 0
C1 G 1 1 0 1
C2 L 0 1 0 1
RTP infeas
SOL 0
DER 1
D1 G 1 0 { lin incomplete 0 1 } -1
`
	m := parseModel(t, src)
	stats, err := NewEngine(m, Options{Threads: 1}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)
	recheck(t, m)
}

// stuckOracle always reports a non-terminal status.
type stuckOracle struct{ *SimplexOracle }

func (s stuckOracle) Solve() Status { return Other }

func TestOracleErrorToleratedPerDerivation(t *testing.T) {
	m := parseModel(t, incompleteCert)
	stats, err := NewEngine(m, Options{
		Threads:   1,
		NewOracle: func() Oracle { return stuckOracle{NewSimplexOracle()} },
	}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Warnings)
	require.Zero(t, stats.Completed)
	// The derivation is re-emitted in its incomplete form.
	lin := m.Derivations[2].Reason.Lin
	require.True(t, lin.Incomplete)
	require.Equal(t, []int{0, 1, 2, 3}, lin.ActiveSet)
}

func TestCompletingCompleteCertificateIsNoop(t *testing.T) {
	src := strings.Replace(weakCert,
		"{ lin weak { 0 } 1 0 1/4 }",
		"{ lin 2 0 1/4 3 3/4 }", 1)
	m := parseModel(t, src)
	stats, err := NewEngine(m, Options{Threads: 4}).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Total)
	recheck(t, m)
}

func TestParallelCompletionPreservesOrder(t *testing.T) {
	// Many independent weak derivations completed with several workers;
	// each must end up with its own multipliers, in place.
	var b strings.Builder
	b.WriteString(`
VER 1.0
VAR 1 x
INT 1 0
OBJ min 1 0 1
CON 2 2
B1 G 0 1 0 1
B2 L 10 1 0 1
RTP range 0 10
SOL 1
s0 1 0 1
DER 17
`)
	// Derivations WA..WP each weak-derive x >= 0 from an empty
	// multiplier list, forcing a bound correction through B1.
	for i := 0; i < 16; i++ {
		b.WriteString("W")
		b.WriteString(string(rune('A' + i)))
		b.WriteString(" G 0 1 0 1 { lin weak { 0 } 0 } -1\n")
	}
	b.WriteString("F G 0 OBJ { lin 1 0 1 } -1\n")

	m := parseModel(t, b.String())
	stats, err := NewEngine(m, Options{Threads: 4}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 16, stats.Completed)
	for i := 0; i < 16; i++ {
		lin := m.Derivations[i].Reason.Lin
		require.False(t, lin.Weak)
		require.True(t, rational.Equal(lin.Multipliers[0], rational.FromInt64(1)), "derivation %d", i)
	}
	recheck(t, m)
}
