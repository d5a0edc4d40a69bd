package parser

import (
	"strings"
	"testing"

	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
	"github.com/stretchr/testify/require"
)

const sampleCert = `
VER 1.0
VAR 2 x y
INT 1 0
OBJ min 2 0 1 1 1
CON 2 0
C0 G 0 1 0 1
C1 L 5 1 1 1
RTP range -inf inf
SOL 1
S0 2 0 0 1 0
DER 3
D0 G 0 1 0 1 { asm } -1
D1 L 5 1 1 1 { asm } -1
D2 G -5 0 { lin 2 0 1 1 -1 } -1
`

func TestParseFullCertificate(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleCert))
	require.NoError(t, err)

	require.Equal(t, 1, m.MajorVersion)
	require.Equal(t, 0, m.MinorVersion)
	require.Len(t, m.Variables, 2)
	require.True(t, m.IsIntegerVar(0))
	require.False(t, m.IsIntegerVar(1))
	require.Equal(t, cert.Minimize, m.Objective.Sense)
	require.Len(t, m.Constraints, 2)
	require.Equal(t, cert.Range, m.RTP.Kind)
	require.Nil(t, m.RTP.Lower)
	require.Nil(t, m.RTP.Upper)
	require.Len(t, m.Solutions, 1)
	require.Len(t, m.Derivations, 3)

	require.Equal(t, cert.ReasonAsm, m.Derivations[0].Reason.Kind)
	require.Equal(t, cert.ReasonLin, m.Derivations[2].Reason.Kind)
	mult := m.Derivations[2].Reason.Lin.Multipliers
	require.Len(t, mult, 2)
	require.True(t, rational.Equal(mult[0], rational.FromInt64(1)))
	require.True(t, rational.Equal(mult[1], rational.FromInt64(-1)))
}

func TestParseInfeasRTP(t *testing.T) {
	src := `
VER 1.0
VAR 1 x
INT 0
OBJ min 1 0 1
CON 1 0
C0 G 1 1 0 1
RTP infeas
SOL 0
DER 0
`
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, cert.Infeasible, m.RTP.Kind)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	src := "VER 2.0\n"
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
}

func TestParseRejectsBadSense(t *testing.T) {
	src := `
VER 1.0
VAR 1 x
INT 0
OBJ min 1 0 1
CON 1 0
C0 X 1 1 0 1
RTP infeas
SOL 0
DER 0
`
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
}

func TestParseObjectiveReference(t *testing.T) {
	src := `
VER 1.0
VAR 1 x
INT 0
OBJ min 1 0 1
CON 1 0
C0 L 5 OBJ
RTP infeas
SOL 0
DER 0
`
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.True(t, m.Constraints[0].DerivedEqualsObjective)
	require.True(t, m.Constraints[0].Coefs.Equal(m.Objective.Coefs))
}

func TestParseWeakAndIncompletePayloads(t *testing.T) {
	src := `
VER 1.0
VAR 1 x
INT 1 0
OBJ min 1 0 1
CON 1 0
C0 G 0 1 0 1
RTP infeas
SOL 0
DER 2
D0 L 3 1 0 1 { lin weak { 1 L 0 2 0 } 1 0 1 } -1
D1 L 3 1 0 1 { lin incomplete 0 1 } -1
`
	m, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, m.Derivations, 2)

	weak := m.Derivations[0].Reason.Lin
	require.True(t, weak.Weak)
	require.Len(t, weak.WeakBounds, 1)
	require.Equal(t, cert.LowerBound, weak.WeakBounds[0].Kind)
	require.Equal(t, 0, weak.WeakBounds[0].VarIdx)
	require.Len(t, weak.Multipliers, 1)

	incomplete := m.Derivations[1].Reason.Lin
	require.True(t, incomplete.Incomplete)
	require.Equal(t, []int{0, 1}, incomplete.ActiveSet)
}
