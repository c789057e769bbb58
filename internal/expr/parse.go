package expr

import (
	"strconv"
	"strings"

	"github.com/roach88/motif/internal/ir"
)

// Parse parses a textual boolean predicate.
//
// Grammar:
//
//	or      := and (("OR" | "||") and)*
//	and     := not (("AND" | "&&") not)*
//	not     := ("NOT" | "!") not | cmp
//	cmp     := operand (op operand)?
//	op      := "=" | "==" | "!=" | "<>" | "<" | "<=" | ">" | ">="
//	operand := ident | "`" quoted "`" | int | 'string' | "string"
//	         | TRUE | FALSE | NULL | "(" or ")"
//
// Keywords are case-insensitive. String literals double their quote
// character to escape it.
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxError(input, tok.pos, "unexpected %q after predicate", tok.text)
	}
	return e, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokOp
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
	tokNull
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]tokenKind{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"true":  tokTrue,
	"false": tokFalse,
	"null":  tokNull,
}

func isKeyword(s string) bool {
	_, ok := keywords[strings.ToLower(s)]
	return ok
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '&' || c == '|':
			if i+1 >= len(input) || input[i+1] != c {
				return nil, syntaxError(input, i, "unexpected %q", string(c))
			}
			kind := tokAnd
			if c == '|' {
				kind = tokOr
			}
			toks = append(toks, token{kind: kind, text: input[i : i+2], pos: i})
			i += 2
		case c == '=' || c == '<' || c == '>' || c == '!':
			op, n := lexOp(input[i:])
			if n == 0 {
				// lone "!" is negation
				toks = append(toks, token{kind: tokNot, text: "!", pos: i})
				i++
				continue
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += n
		case c == '\'' || c == '"' || c == '`':
			s, n, ok := lexQuoted(input[i:], c)
			if !ok {
				return nil, syntaxError(input, i, "unterminated quoted text")
			}
			kind := tokString
			if c == '`' {
				kind = tokIdent
			}
			toks = append(toks, token{kind: kind, text: s, pos: i})
			i += n
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(input) && input[j] >= '0' && input[j] <= '9' {
				j++
			}
			if c == '-' && j == i+1 {
				return nil, syntaxError(input, i, "expected digits after '-'")
			}
			if j < len(input) && (input[j] == '.' || input[j] == 'e' || input[j] == 'E') {
				return nil, syntaxError(input, i, "floating point literals are not supported")
			}
			toks = append(toks, token{kind: tokInt, text: input[i:j], pos: i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(input) && isIdentPart(input[j]) {
				j++
			}
			word := input[i:j]
			kind, ok := keywords[strings.ToLower(word)]
			if !ok {
				kind = tokIdent
			}
			toks = append(toks, token{kind: kind, text: word, pos: i})
			i = j
		default:
			return nil, syntaxError(input, i, "unexpected character %q", string(c))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

// lexOp returns the normalized operator at the start of s and its length,
// or 0 when s starts with a lone "!".
func lexOp(s string) (string, int) {
	two := ""
	if len(s) >= 2 {
		two = s[:2]
	}
	switch two {
	case "==":
		return string(OpEq), 2
	case "!=", "<>":
		return string(OpNe), 2
	case "<=":
		return string(OpLe), 2
	case ">=":
		return string(OpGe), 2
	}
	switch s[0] {
	case '=':
		return string(OpEq), 1
	case '<':
		return string(OpLt), 1
	case '>':
		return string(OpGt), 1
	}
	return "", 0
}

// lexQuoted reads a quoted run starting at s[0]; a doubled quote is an
// escaped quote character.
func lexQuoted(s string, quote byte) (string, int, bool) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			return b.String(), i + 1, true
		}
		b.WriteByte(s[i])
		i++
	}
	return "", 0, false
}

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.peek().kind == tokOr {
		p.next()
		t, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Or{Terms: terms}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.peek().kind == tokAnd {
		p.next()
		t, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return And{Terms: terms}, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Expr: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOp {
		return left, nil
	}
	op := Op(p.next().text)
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Comparison{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokIdent:
		return ColumnRef{Name: tok.text}, nil
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, syntaxError(p.input, tok.pos, "integer %s out of range", tok.text)
		}
		return Literal{Value: ir.IRInt(n)}, nil
	case tokString:
		return Literal{Value: ir.IRString(tok.text)}, nil
	case tokTrue:
		return Literal{Value: ir.IRBool(true)}, nil
	case tokFalse:
		return Literal{Value: ir.IRBool(false)}, nil
	case tokNull:
		return Literal{Value: ir.IRNull{}}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxError(p.input, closing.pos, "expected ')'")
		}
		return inner, nil
	case tokEOF:
		return nil, syntaxError(p.input, tok.pos, "unexpected end of predicate")
	default:
		return nil, syntaxError(p.input, tok.pos, "unexpected %q", tok.text)
	}
}
