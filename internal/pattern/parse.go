package pattern

import (
	"fmt"
	"strings"
)

// Parse turns a motif pattern into its clause list.
//
// Grammar:
//
//	pattern      := clause (";" clause)* | ""
//	clause       := edgeClause | vertexClause
//	edgeClause   := ["!"] "(" name? ")" "-[" name? "]->" "(" name? ")"
//	vertexClause := "(" name? ")"
//	name         := [A-Za-z_][A-Za-z0-9_]*
//
// Whitespace between tokens is insignificant. The empty (or all-blank)
// pattern parses to an empty, non-nil clause list.
func Parse(input string) ([]Clause, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, toks: toks}

	clauses := []Clause{}
	if p.peek().kind == tokEOF {
		return clauses, nil
	}
	for {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)

		tok := p.next()
		switch tok.kind {
		case tokEOF:
			return clauses, nil
		case tokSemicolon:
			if next := p.peek(); next.kind == tokEOF || next.kind == tokSemicolon {
				return nil, p.errorAt(next.pos, p.clauseStart, ErrCodeEmptyClause, "empty clause after ';'")
			}
		default:
			return nil, p.errorAt(tok.pos, p.clauseStart, ErrCodeUnexpectedToken,
				fmt.Sprintf("expected ';' or end of pattern, got %s", tok.describe()))
		}
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokIdent
	tokBang
	tokSemicolon
	tokEdgeOpen    // -[
	tokEdgeClose   // ]->
	tokReverseOpen // <-[
	tokBareClose   // ]- not followed by >
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of pattern"
	}
	return fmt.Sprintf("%q", t.text)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
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
		case c == '!':
			toks = append(toks, token{kind: tokBang, text: "!", pos: i})
			i++
		case c == ';':
			toks = append(toks, token{kind: tokSemicolon, text: ";", pos: i})
			i++
		case strings.HasPrefix(input[i:], "-["):
			toks = append(toks, token{kind: tokEdgeOpen, text: "-[", pos: i})
			i += 2
		case strings.HasPrefix(input[i:], "]->"):
			toks = append(toks, token{kind: tokEdgeClose, text: "]->", pos: i})
			i += 3
		case strings.HasPrefix(input[i:], "<-["):
			toks = append(toks, token{kind: tokReverseOpen, text: "<-[", pos: i})
			i += 3
		case strings.HasPrefix(input[i:], "]-"):
			toks = append(toks, token{kind: tokBareClose, text: "]-", pos: i})
			i += 2
		case isNameStart(c):
			j := i + 1
			for j < len(input) && isNamePart(input[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j], pos: i})
			i = j
		default:
			return nil, &ParseError{
				Code:     ErrCodeInvalidCharacter,
				Message:  fmt.Sprintf("unexpected character %q", string(c)),
				Pattern:  input,
				Fragment: clauseAround(input, i),
				Pos:      i,
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

// clauseAround returns the trimmed ';'-delimited segment containing pos.
func clauseAround(input string, pos int) string {
	start := strings.LastIndexByte(input[:pos], ';') + 1
	end := len(input)
	if k := strings.IndexByte(input[pos:], ';'); k >= 0 {
		end = pos + k
	}
	return strings.TrimSpace(input[start:end])
}

type parser struct {
	input       string
	toks        []token
	pos         int
	clauseStart int
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

// errorAt builds a ParseError whose fragment runs from the clause start
// through the end of the clause containing pos.
func (p *parser) errorAt(pos, clauseStart int, code, msg string) *ParseError {
	end := len(p.input)
	if pos < len(p.input) {
		if k := strings.IndexByte(p.input[pos:], ';'); k >= 0 {
			end = pos + k
		}
	}
	if clauseStart > end {
		clauseStart = end
	}
	return &ParseError{
		Code:     code,
		Message:  msg,
		Pattern:  p.input,
		Fragment: strings.TrimSpace(p.input[clauseStart:end]),
		Pos:      pos,
	}
}

func (p *parser) fail(tok token, code, msg string) *ParseError {
	return p.errorAt(tok.pos, p.clauseStart, code, msg)
}

func (p *parser) parseClause() (Clause, error) {
	first := p.peek()
	p.clauseStart = first.pos

	negated := false
	if first.kind == tokBang {
		negated = true
		p.next()
	}

	src, err := p.parseVertex()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); tok.kind {
	case tokEdgeOpen:
		p.next()
	case tokReverseOpen:
		return nil, p.fail(tok, ErrCodeReversedDirection,
			"edges are written source first: use (a)-[e]->(b) instead of <-[e]-")
	default:
		if negated {
			return nil, p.errorAt(first.pos, first.pos, ErrCodeNegatedVertex,
				"negation is only allowed on edge clauses")
		}
		return VertexClause{Name: src, Start: first.pos, End: p.lastEnd()}, nil
	}

	edge := Anonymous
	if tok := p.peek(); tok.kind == tokIdent {
		edge = Name(p.next().text)
	}

	switch tok := p.next(); tok.kind {
	case tokEdgeClose:
	case tokBareClose:
		return nil, p.fail(tok, ErrCodeReversedDirection, "edge is missing its direction: expected \"]->\"")
	case tokRParen, tokLParen, tokSemicolon, tokEOF:
		return nil, p.fail(tok, ErrCodeUnmatchedBracket, fmt.Sprintf("expected \"]->\" to close \"-[\", got %s", tok.describe()))
	default:
		return nil, p.fail(tok, ErrCodeUnexpectedToken, fmt.Sprintf("expected \"]->\", got %s", tok.describe()))
	}

	dst, err := p.parseVertex()
	if err != nil {
		return nil, err
	}

	return EdgeClause{
		Src:     src,
		Edge:    edge,
		Dst:     dst,
		Negated: negated,
		Start:   first.pos,
		End:     p.lastEnd(),
	}, nil
}

// parseVertex reads "(" name? ")".
func (p *parser) parseVertex() (Name, error) {
	open := p.next()
	if open.kind != tokLParen {
		if (open.kind == tokSemicolon || open.kind == tokEOF) && open.pos == p.clauseStart {
			return Anonymous, p.fail(open, ErrCodeEmptyClause, fmt.Sprintf("expected \"(\", got %s", open.describe()))
		}
		return Anonymous, p.fail(open, ErrCodeUnexpectedToken, fmt.Sprintf("expected \"(\", got %s", open.describe()))
	}

	name := Anonymous
	if p.peek().kind == tokIdent {
		name = Name(p.next().text)
	}

	closing := p.next()
	switch closing.kind {
	case tokRParen:
		return name, nil
	case tokIdent:
		return Anonymous, p.fail(closing, ErrCodeUnexpectedToken, fmt.Sprintf("a vertex holds one name, got extra %s", closing.describe()))
	default:
		return Anonymous, p.fail(closing, ErrCodeUnmatchedBracket, fmt.Sprintf("expected \")\" to close \"(\", got %s", closing.describe()))
	}
}

// lastEnd is the byte offset just past the most recently consumed token.
func (p *parser) lastEnd() int {
	if p.pos == 0 {
		return 0
	}
	tok := p.toks[p.pos-1]
	return tok.pos + len(tok.text)
}
