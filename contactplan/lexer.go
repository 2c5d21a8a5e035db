// Package contactplan loads contact plans in the three supported formats
// and hands the core `([]core.Node, []*core.Contact)` to the routers:
//
//   - A-SABR: a whitespace token stream with per-entity markers selecting
//     each contact's manager (evl, eto, qd, seg, pevl, peto, pqd, pseg);
//   - ION: line-oriented "a contact ..." / "a range ..." statements;
//   - TVGUtil: a JSON document with a "contacts" array.
//
// Contacts rejected by their manager's TryInit (gapped segment plans,
// non-positive rates) surface as load-time configuration errors; nothing is
// ever silently dropped.
//
// Errors (sentinel):
//
//   - ErrSyntax         malformed token where a field was expected.
//   - ErrUnknownMarker  a contact marker with no registered parser.
package contactplan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Sentinel errors for plan loading.
var (
	// ErrSyntax indicates a malformed or missing token.
	ErrSyntax = errors.New("contactplan: syntax error")

	// ErrUnknownMarker indicates a manager marker with no registered parser.
	ErrUnknownMarker = errors.New("contactplan: unknown manager marker")
)

// Lexer splits a plan into whitespace-separated tokens with one-token
// lookahead and a running position for error reporting.
type Lexer struct {
	scanner *bufio.Scanner
	pos     int
	peeked  string
	hasPeek bool
}

// NewLexer wraps a reader into a token stream.
func NewLexer(r io.Reader) *Lexer {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	return &Lexer{scanner: sc}
}

// Next consumes and returns the next token; false at end of input.
func (l *Lexer) Next() (string, bool) {
	if l.hasPeek {
		l.hasPeek = false

		return l.peeked, true
	}
	if !l.scanner.Scan() {
		return "", false
	}
	l.pos++

	return l.scanner.Text(), true
}

// Peek returns the next token without consuming it; false at end of input.
func (l *Lexer) Peek() (string, bool) {
	if !l.hasPeek {
		tok, ok := l.Next()
		if !ok {
			return "", false
		}
		l.peeked, l.hasPeek = tok, true
	}

	return l.peeked, true
}

// Position is the number of tokens read from the input so far, a peeked
// token included, for error messages.
func (l *Lexer) Position() int { return l.pos }

// Float consumes one token as a float64.
func (l *Lexer) Float() (float64, error) {
	tok, ok := l.Next()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of input at token %d", ErrSyntax, l.pos)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number (token %d)", ErrSyntax, tok, l.pos)
	}

	return v, nil
}

// Uint consumes one token as an unsigned integer (node IDs).
func (l *Lexer) Uint() (uint64, error) {
	tok, ok := l.Next()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of input at token %d", ErrSyntax, l.pos)
	}
	v, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a node ID (token %d)", ErrSyntax, tok, l.pos)
	}

	return v, nil
}
