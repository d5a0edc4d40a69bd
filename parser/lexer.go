/*
Package parser implements the streaming token reader and section grammar
for the certificate format: VER, VAR, INT, OBJ, CON, RTP,
SOL, DER, in that fixed order.

The lexer is a scanner over whitespace-separated fields, tolerating blank
lines and a line-leading comment marker. Since derivation records are
brace-delimited rather than one-record-per-line, the tokens form one flat
cursor spanning the whole input rather than a per-line field scanner.
*/
package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/crillab/vipr/cerrors"
)

// Lexer splits a certificate into whitespace-separated tokens, dropping
// line-leading "%" comments (which consume to end-of-line) and blank
// lines.
type Lexer struct {
	tokens []string
	line   []int // line number (1-based) each token was found on, for diagnostics
	pos    int
}

// NewLexer reads all of r and tokenizes it.
func NewLexer(r io.Reader) (*Lexer, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lex := &Lexer{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if idx := strings.IndexByte(line, '%'); idx >= 0 {
			line = line[:idx]
		}
		for _, tok := range strings.Fields(line) {
			lex.tokens = append(lex.tokens, tok)
			lex.line = append(lex.line, lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, cerrors.Wrap(cerrors.ParseError, "", err, "could not read certificate")
	}
	return lex, nil
}

// Done reports whether every token has been consumed.
func (l *Lexer) Done() bool { return l.pos >= len(l.tokens) }

// Peek returns the next token without consuming it, or "" at end of input.
func (l *Lexer) Peek() string {
	if l.Done() {
		return ""
	}
	return l.tokens[l.pos]
}

// Next consumes and returns the next token, or a ParseError at end of
// input.
func (l *Lexer) Next() (string, error) {
	if l.Done() {
		return "", cerrors.New(cerrors.ParseError, "", "unexpected end of input")
	}
	tok := l.tokens[l.pos]
	l.pos++
	return tok, nil
}

// Line returns the 1-based source line of the token most recently
// returned by Next, for diagnostics.
func (l *Lexer) Line() int {
	if l.pos == 0 || l.pos > len(l.line) {
		return 0
	}
	return l.line[l.pos-1]
}
