package parser

import (
	"io"
	"strconv"
	"strings"

	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// SupportedMajor and SupportedMinor are the newest certificate format
// version this parser understands: the major
// version must match exactly, the minor version may be any value at or
// below what's supported here.
const (
	SupportedMajor = 1
	SupportedMinor = 0
)

// Parse reads a full certificate from r and returns the parsed Model, in
// section order VER, VAR, INT, OBJ, CON, RTP, SOL, DER.
func Parse(r io.Reader) (*cert.Model, error) {
	lex, err := NewLexer(r)
	if err != nil {
		return nil, err
	}
	p := &parser{lex: lex, model: cert.NewModel()}
	if err := p.parseVER(); err != nil {
		return nil, err
	}
	if err := p.parseVAR(); err != nil {
		return nil, err
	}
	if err := p.parseINT(); err != nil {
		return nil, err
	}
	if err := p.parseOBJ(); err != nil {
		return nil, err
	}
	if err := p.parseCON(); err != nil {
		return nil, err
	}
	if err := p.parseRTP(); err != nil {
		return nil, err
	}
	if err := p.parseSOL(); err != nil {
		return nil, err
	}
	if err := p.parseDER(); err != nil {
		return nil, err
	}
	return p.model, nil
}

type parser struct {
	lex   *Lexer
	model *cert.Model
}

func (p *parser) expect(want string) error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	if tok != want {
		return cerrors.New(cerrors.ParseError, "", want+" expected, read instead "+tok)
	}
	return nil
}

func (p *parser) nextInt() (int, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok)
	if convErr != nil {
		return 0, cerrors.Wrap(cerrors.ParseError, "", convErr, "expected an integer, read "+tok)
	}
	return n, nil
}

func (p *parser) nextRational() (*rational.Rational, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	val, convErr := rational.ParseRational(tok)
	if convErr != nil {
		return nil, cerrors.Wrap(cerrors.ParseError, "", convErr, "malformed rational "+tok)
	}
	return val, nil
}

// parseVER reads "VER major.minor" and enforces the version gate.
func (p *parser) parseVER() error {
	if err := p.expect("VER"); err != nil {
		return err
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	dot := strings.IndexByte(tok, '.')
	if dot < 0 {
		return cerrors.New(cerrors.ParseError, "", "malformed version string "+tok)
	}
	major, err1 := strconv.Atoi(tok[:dot])
	minor, err2 := strconv.Atoi(tok[dot+1:])
	if err1 != nil || err2 != nil {
		return cerrors.New(cerrors.ParseError, "", "malformed version string "+tok)
	}
	if major != SupportedMajor || minor > SupportedMinor {
		return cerrors.New(cerrors.ParseError, "", "unsupported certificate format version "+tok)
	}
	p.model.MajorVersion, p.model.MinorVersion = major, minor
	return nil
}

// parseVAR reads "VAR n name1 ... namen".
func (p *parser) parseVAR() error {
	if err := p.expect("VAR"); err != nil {
		return err
	}
	n, err := p.nextInt()
	if err != nil {
		return err
	}
	if n < 0 {
		return cerrors.New(cerrors.ParseError, "", "negative variable count")
	}
	vars := make([]cert.Variable, n)
	for i := 0; i < n; i++ {
		name, err := p.lex.Next()
		if err != nil {
			return err
		}
		vars[i] = cert.Variable{Name: name}
	}
	p.model.Variables = vars
	return nil
}

// parseINT reads "INT n idx1 ... idxn", marking those variables integer.
func (p *parser) parseINT() error {
	if err := p.expect("INT"); err != nil {
		return err
	}
	n, err := p.nextInt()
	if err != nil {
		return err
	}
	if n < 0 {
		return cerrors.New(cerrors.ParseError, "", "negative integer-variable count")
	}
	for i := 0; i < n; i++ {
		idx, err := p.nextInt()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(p.model.Variables) {
			return cerrors.New(cerrors.IndexError, "", "integer variable index out of range")
		}
		p.model.IntSet[idx] = struct{}{}
		p.model.Variables[idx].Integer = true
	}
	return nil
}

// parseOBJ reads "OBJ min|max <coefficients>".
func (p *parser) parseOBJ() error {
	if err := p.expect("OBJ"); err != nil {
		return err
	}
	sensTok, err := p.lex.Next()
	if err != nil {
		return err
	}
	var sense cert.ObjSense
	switch sensTok {
	case "min":
		sense = cert.Minimize
	case "max":
		sense = cert.Maximize
	default:
		return cerrors.New(cerrors.ParseError, "", "invalid objective sense "+sensTok)
	}
	coefs, isObj, err := p.parseCoefficients()
	if err != nil {
		return err
	}
	if isObj {
		return cerrors.New(cerrors.ParseError, "", "objective cannot reference itself as OBJ")
	}
	p.model.Objective = cert.NewObjective(sense, coefs, p.model.Variables)
	return nil
}

// parseCoefficients reads either "OBJ" (a reference to the objective row,
// only legal for constraint/derivation payloads, never for OBJ itself) or
// "k idx1 val1 ... idxk valk".
func (p *parser) parseCoefficients() (*rational.Vector, bool, error) {
	tok := p.lex.Peek()
	if tok == "OBJ" {
		p.lex.Next()
		if p.model.Objective == nil {
			return nil, false, cerrors.New(cerrors.ParseError, "", "OBJ payload used before the objective was declared")
		}
		return p.model.Objective.Coefs, true, nil
	}
	k, err := p.nextInt()
	if err != nil {
		return nil, false, err
	}
	if k < 0 {
		return nil, false, cerrors.New(cerrors.ParseError, "", "negative coefficient count")
	}
	v := rational.NewVector()
	for i := 0; i < k; i++ {
		idx, err := p.nextInt()
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(p.model.Variables) {
			return nil, false, cerrors.New(cerrors.IndexError, "", "variable index out of range")
		}
		val, err := p.nextRational()
		if err != nil {
			return nil, false, err
		}
		v.Set(idx, val)
	}
	v.Compactify()
	return v, false, nil
}

func parseSense(tok string) (cert.Sense, error) {
	switch tok {
	case "E":
		return cert.EQ, nil
	case "L":
		return cert.LE, nil
	case "G":
		return cert.GE, nil
	}
	return 0, cerrors.New(cerrors.ParseError, "", "unknown sense "+tok)
}

// parseConstraintBody reads "label sense rhs <coefficients>", used for both
// CON entries and DER "toDer" headers.
func (p *parser) parseConstraintBody() (*cert.Constraint, bool, error) {
	label, err := p.lex.Next()
	if err != nil {
		return nil, false, err
	}
	senseTok, err := p.lex.Next()
	if err != nil {
		return nil, false, err
	}
	sense, err := parseSense(senseTok)
	if err != nil {
		return nil, false, cerrors.Wrap(cerrors.ParseError, label, err, "")
	}
	rhs, err := p.nextRational()
	if err != nil {
		return nil, false, err
	}
	coefs, isObj, err := p.parseCoefficients()
	if err != nil {
		return nil, false, err
	}
	c := cert.NewConstraint(label, sense, rhs, coefs)
	c.DerivedEqualsObjective = isObj
	return c, isObj, nil
}

// parseCON reads "CON nCon nBnd" followed by nCon constraint bodies.
// nBnd is parsed but never consulted during verification; it exists only
// as a debugging aid for certificate authors.
func (p *parser) parseCON() error {
	if err := p.expect("CON"); err != nil {
		return err
	}
	nCon, err := p.nextInt()
	if err != nil {
		return err
	}
	nBnd, err := p.nextInt()
	if err != nil {
		return err
	}
	p.model.NumBounds = nBnd
	if nCon < 0 {
		return cerrors.New(cerrors.ParseError, "", "negative constraint count")
	}
	cs := make([]*cert.Constraint, 0, nCon)
	for i := 0; i < nCon; i++ {
		c, _, err := p.parseConstraintBody()
		if err != nil {
			return err
		}
		p.model.Bounds.Observe(c, i)
		cs = append(cs, c)
	}
	p.model.Constraints = cs
	return nil
}

// parseRTP reads "RTP infeas" or "RTP range lower upper", with "-inf"/"inf"
// sentinels for unbounded sides.
func (p *parser) parseRTP() error {
	if err := p.expect("RTP"); err != nil {
		return err
	}
	kind, err := p.lex.Next()
	if err != nil {
		return err
	}
	switch kind {
	case "infeas":
		p.model.RTP = cert.RTP{Kind: cert.Infeasible}
	case "range":
		lowTok, err := p.lex.Next()
		if err != nil {
			return err
		}
		upTok, err := p.lex.Next()
		if err != nil {
			return err
		}
		rtp := cert.RTP{Kind: cert.Range}
		if lowTok != "-inf" {
			v, err := rational.ParseRational(lowTok)
			if err != nil {
				return cerrors.Wrap(cerrors.ParseError, "", err, "malformed RTP lower bound")
			}
			rtp.Lower = v
		}
		if upTok != "inf" {
			v, err := rational.ParseRational(upTok)
			if err != nil {
				return cerrors.Wrap(cerrors.ParseError, "", err, "malformed RTP upper bound")
			}
			rtp.Upper = v
		}
		if rtp.Lower != nil && rtp.Upper != nil && rational.Cmp(rtp.Lower, rtp.Upper) > 0 {
			return cerrors.New(cerrors.ParseError, "", "RTP: invalid bounds")
		}
		p.model.RTP = rtp
	default:
		return cerrors.New(cerrors.ParseError, "", "unrecognized RTP verification type "+kind)
	}
	return nil
}

// parseSOL reads "SOL n" followed by n "label <coefficients>" solutions.
func (p *parser) parseSOL() error {
	if err := p.expect("SOL"); err != nil {
		return err
	}
	n, err := p.nextInt()
	if err != nil {
		return err
	}
	if n < 0 {
		return cerrors.New(cerrors.ParseError, "", "negative solution count")
	}
	sols := make([]cert.Solution, 0, n)
	for i := 0; i < n; i++ {
		label, err := p.lex.Next()
		if err != nil {
			return err
		}
		values, isObj, err := p.parseCoefficients()
		if err != nil {
			return err
		}
		if isObj {
			return cerrors.New(cerrors.ParseError, label, "solution values cannot reference OBJ")
		}
		sols = append(sols, cert.Solution{Label: label, Values: values})
	}
	p.model.Solutions = sols
	return nil
}

// parseDER reads "DER nDer" followed by nDer derivation records, each
// "label sense rhs <coefficients> { kind <payload> } maxRefIdx". The
// dual-bound tautology shortcut for RANGE certificates is left to the
// checker, not the parser: this package only builds the data, it never
// short-circuits.
func (p *parser) parseDER() error {
	if err := p.expect("DER"); err != nil {
		return err
	}
	nDer, err := p.nextInt()
	if err != nil {
		return err
	}
	if nDer < 0 {
		return cerrors.New(cerrors.ParseError, "", "negative derivation count")
	}
	ders := make([]*cert.Derivation, 0, nDer)
	for i := 0; i < nDer; i++ {
		declared, _, err := p.parseConstraintBody()
		if err != nil {
			return err
		}
		if err := p.expect("{"); err != nil {
			return err
		}
		kind, err := p.lex.Next()
		if err != nil {
			return err
		}
		reason, err := p.parseReason(kind, declared.Label)
		if err != nil {
			return err
		}
		if err := p.expect("}"); err != nil {
			return err
		}
		maxRef, err := p.nextInt()
		if err != nil {
			return err
		}
		declared.IsAssumption = reason.Kind == cert.ReasonAsm
		ders = append(ders, &cert.Derivation{Declared: declared, Reason: reason, MaxRefIdx: maxRef})
	}
	p.model.Derivations = ders
	return nil
}

func (p *parser) parseReason(kind, label string) (cert.Reason, error) {
	switch kind {
	case "asm":
		return cert.Reason{Kind: cert.ReasonAsm}, nil
	case "sol":
		return cert.Reason{Kind: cert.ReasonSol}, nil
	case "lin", "rnd":
		lin, err := p.parseLinReason(label)
		if err != nil {
			return cert.Reason{}, err
		}
		reasonKind := cert.ReasonLin
		if kind == "rnd" {
			if lin.Incomplete || lin.Weak {
				return cert.Reason{}, cerrors.New(cerrors.ParseError, label, "rnd derivations cannot be incomplete or weak")
			}
			reasonKind = cert.ReasonRnd
		}
		return cert.Reason{Kind: reasonKind, Lin: lin}, nil
	case "uns":
		uns, err := p.parseUnsplitReason(label)
		if err != nil {
			return cert.Reason{}, err
		}
		return cert.Reason{Kind: cert.ReasonUns, Unsplit: uns}, nil
	}
	return cert.Reason{}, cerrors.New(cerrors.ParseError, label, "unknown derivation kind "+kind)
}

// parseLinReason reads a "lin"/"rnd" payload: a plain multiplier list
// ("k idx1 val1 ... idxk valk"), an incomplete marker ("incomplete
// idx1 ... idxm }", read up to but not past the closing brace), or a weak
// marker ("weak { nbounds type idx boundRef val ... } k idx1 val1 ...").
func (p *parser) parseLinReason(label string) (*cert.LinReason, error) {
	tok := p.lex.Peek()
	switch tok {
	case "incomplete":
		p.lex.Next()
		var active []int
		for p.lex.Peek() != "}" {
			idx, err := p.nextInt()
			if err != nil {
				return nil, err
			}
			active = append(active, idx)
		}
		return &cert.LinReason{Incomplete: true, ActiveSet: active}, nil
	case "weak":
		p.lex.Next()
		bounds, err := p.parseWeakBounds(label)
		if err != nil {
			return nil, err
		}
		_, mult, err := p.parseMultipliers()
		if err != nil {
			return nil, err
		}
		return &cert.LinReason{Weak: true, WeakBounds: bounds, Multipliers: mult}, nil
	default:
		_, mult, err := p.parseMultipliers()
		if err != nil {
			return nil, err
		}
		return &cert.LinReason{Multipliers: mult}, nil
	}
}

// parseWeakBounds reads "{ n type idx boundRef val ... }", the local
// bound-override table a weak derivation may supply.
func (p *parser) parseWeakBounds(label string) ([]cert.WeakBoundEntry, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	n, err := p.nextInt()
	if err != nil {
		return nil, err
	}
	entries := make([]cert.WeakBoundEntry, 0, n)
	for i := 0; i < n; i++ {
		typTok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}
		var kind cert.BoundKind
		switch typTok {
		case "L":
			kind = cert.LowerBound
		case "U":
			kind = cert.UpperBound
		default:
			return nil, cerrors.New(cerrors.ParseError, label, "weak bound type must be L or U, read "+typTok)
		}
		varIdx, err := p.nextInt()
		if err != nil {
			return nil, err
		}
		boundRef, err := p.nextInt()
		if err != nil {
			return nil, err
		}
		val, err := p.nextRational()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cert.WeakBoundEntry{VarIdx: varIdx, Kind: kind, BoundRef: boundRef, Value: val})
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseMultipliers reads "k idx1 val1 ... idxk valk", returning 0 as its
// first value (no sign is computed here) and the multiplier map. The
// resulting sense is computed by algebra.LinComb against the
// already-checked referenced constraints; a zero-valued multiplier is
// dropped here so downstream consumers never see it.
func (p *parser) parseMultipliers() (int, map[int]*rational.Rational, error) {
	k, err := p.nextInt()
	if err != nil {
		return 0, nil, err
	}
	mult := make(map[int]*rational.Rational, k)
	for i := 0; i < k; i++ {
		idx, err := p.nextInt()
		if err != nil {
			return 0, nil, err
		}
		if idx < 0 {
			return 0, nil, cerrors.New(cerrors.IndexError, "", "multiplier index out of bounds")
		}
		val, err := p.nextRational()
		if err != nil {
			return 0, nil, err
		}
		if val.IsZero() {
			continue
		}
		mult[idx] = val
	}
	return 0, mult, nil
}

// parseUnsplitReason reads "con1 asm1 con2 asm2".
func (p *parser) parseUnsplitReason(label string) (*cert.UnsplitReason, error) {
	c1, err := p.nextInt()
	if err != nil {
		return nil, err
	}
	a1, err := p.nextInt()
	if err != nil {
		return nil, err
	}
	c2, err := p.nextInt()
	if err != nil {
		return nil, err
	}
	a2, err := p.nextInt()
	if err != nil {
		return nil, err
	}
	if c1 < 0 || c2 < 0 {
		return nil, cerrors.New(cerrors.IndexError, label, "unsplit constraint index out of bounds")
	}
	return &cert.UnsplitReason{C1: c1, A1: a1, C2: c2, A2: a2}, nil
}
