package logic

import (
	"fmt"
	"strings"
	"unicode"

	"gotypo/domain/core"
)

// Grammar for implication conditions over signed parameter literals:
//
//	Literal := ('+'|'-'|'0') [A-Za-z0-9_]+     no whitespace after the sign
//	Primary := Literal | '(' Expr ')'
//	Unary   := 'not' Unary | Primary
//	AndExpr := Unary ('&' Unary)*
//	Expr    := AndExpr ('|' AndExpr)*
//
// The keywords not/and/or are case-insensitive; `&` and `|` are their
// symbolic forms. Precedence is NOT > AND > OR, chains left-associative.
// A blank expression parses to the trivially-true node. Identifiers are
// normalized to uppercase so they line up with canonical parameter ids.
//
// The grammar needs no per-call setup: scanning and parsing are plain
// functions over the input string.

// ParseError describes a malformed implication expression.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d in %q: %s", e.Pos, e.Expr, e.Msg)
}

// Parse turns an implication expression into an evaluable Node. A blank
// (or all-whitespace) input means "no condition" and yields True. Any
// malformed input returns a *ParseError; policy for what a failure means
// (false vs indeterminate) belongs to the caller.
func Parse(expr string) (Node, error) {
	if strings.TrimSpace(expr) == "" {
		return True{}, nil
	}
	p := &parser{expr: expr, runes: []rune(expr)}
	if err := p.next(); err != nil {
		return nil, err
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf(p.tok.pos, "unexpected %s", p.tok.describe())
	}
	return node, nil
}

// Evaluate parses and evaluates in one step. The parse error, if any,
// is returned for the caller to interpret.
func Evaluate(expr string, values map[string]core.Value) (bool, error) {
	node, err := Parse(expr)
	if err != nil {
		return false, err
	}
	return node.Eval(values), nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLiteral
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	pos  int
	sign core.Value // tokLiteral
	id   string     // tokLiteral
	text string
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokLiteral:
		return fmt.Sprintf("literal %s%s", string(t.sign), t.id)
	default:
		return fmt.Sprintf("token %q", t.text)
	}
}

type parser struct {
	expr  string
	runes []rune
	pos   int
	tok   token
}

func (p *parser) errorf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Expr: p.expr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// next scans one token into p.tok.
func (p *parser) next() error {
	for p.pos < len(p.runes) && unicode.IsSpace(p.runes[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.runes) {
		p.tok = token{kind: tokEOF, pos: p.pos}
		return nil
	}

	start := p.pos
	r := p.runes[p.pos]
	switch r {
	case '(':
		p.pos++
		p.tok = token{kind: tokLParen, pos: start, text: "("}
		return nil
	case ')':
		p.pos++
		p.tok = token{kind: tokRParen, pos: start, text: ")"}
		return nil
	case '&':
		p.pos++
		p.tok = token{kind: tokAnd, pos: start, text: "&"}
		return nil
	case '|':
		p.pos++
		p.tok = token{kind: tokOr, pos: start, text: "|"}
		return nil
	case '+', '-', '0':
		// A sign must be glued to its identifier: any whitespace in
		// between (including non-breaking spaces) is an error.
		p.pos++
		if p.pos >= len(p.runes) || !isIdentRune(p.runes[p.pos]) {
			return p.errorf(start, "sign %q must be immediately followed by a parameter id", string(r))
		}
		idStart := p.pos
		for p.pos < len(p.runes) && isIdentRune(p.runes[p.pos]) {
			p.pos++
		}
		p.tok = token{
			kind: tokLiteral,
			pos:  start,
			sign: core.Value(r),
			id:   strings.ToUpper(string(p.runes[idStart:p.pos])),
			text: string(p.runes[start:p.pos]),
		}
		return nil
	}

	if isIdentRune(r) {
		for p.pos < len(p.runes) && isIdentRune(p.runes[p.pos]) {
			p.pos++
		}
		word := string(p.runes[start:p.pos])
		switch strings.ToLower(word) {
		case "not":
			p.tok = token{kind: tokNot, pos: start, text: word}
		case "and":
			p.tok = token{kind: tokAnd, pos: start, text: word}
		case "or":
			p.tok = token{kind: tokOr, pos: start, text: word}
		default:
			return p.errorf(start, "bare word %q: parameter references need a sign (+%s, -%s or 0%s)", word, word, word, word)
		}
		return nil
	}

	return p.errorf(start, "unexpected character %q", string(r))
}

// parseExpr := AndExpr ('|' AndExpr)*
func (p *parser) parseExpr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for p.tok.kind == tokOr {
		if err := p.next(); err != nil {
			return nil, err
		}
		t, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return Or{Terms: terms}, nil
}

// parseAnd := Unary ('&' Unary)*
func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for p.tok.kind == tokAnd {
		if err := p.next(); err != nil {
			return nil, err
		}
		t, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return And{Terms: terms}, nil
}

// parseUnary := 'not' Unary | Primary
func (p *parser) parseUnary() (Node, error) {
	if p.tok.kind == tokNot {
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary := Literal | '(' Expr ')'
func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokLiteral:
		lit := Literal{Sign: p.tok.sign, ID: p.tok.id}
		if err := p.next(); err != nil {
			return nil, err
		}
		return lit, nil
	case tokLParen:
		open := p.tok.pos
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf(open, "unbalanced parenthesis")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errorf(p.tok.pos, "expected a signed literal or '(', got %s", p.tok.describe())
	}
}
