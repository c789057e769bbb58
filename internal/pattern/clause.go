package pattern

import (
	"fmt"
	"strings"
)

// Name is a pattern element name. The zero value is the anonymous marker.
type Name string

// Anonymous marks an unnamed slot, e.g. the edge in "(a)-[]->(b)".
const Anonymous Name = ""

// IsAnonymous reports whether n is the anonymous marker.
func (n Name) IsAnonymous() bool { return n == Anonymous }

func (n Name) String() string { return string(n) }

// Clause is one fragment of a pattern.
//
// This is a sealed interface - only VertexClause and EdgeClause implement it.
// Clauses are produced once by Parse and never modified.
type Clause interface {
	clauseNode()
	// Span returns the byte range of the clause in the pattern text.
	Span() (start, end int)
	String() string
}

// VertexClause matches one vertex: "(a)" or "()".
type VertexClause struct {
	Name  Name
	Start int
	End   int
}

func (VertexClause) clauseNode() {}

// Span implements Clause.
func (c VertexClause) Span() (int, int) { return c.Start, c.End }

func (c VertexClause) String() string {
	return "(" + string(c.Name) + ")"
}

// EdgeClause matches one directed edge: "(a)-[e]->(b)". A negated clause
// ("!(a)-[]->(b)") requires that no such edge exists.
type EdgeClause struct {
	Src     Name
	Edge    Name
	Dst     Name
	Negated bool
	Start   int
	End     int
}

func (EdgeClause) clauseNode() {}

// Span implements Clause.
func (c EdgeClause) Span() (int, int) { return c.Start, c.End }

func (c EdgeClause) String() string {
	s := fmt.Sprintf("(%s)-[%s]->(%s)", c.Src, c.Edge, c.Dst)
	if c.Negated {
		return "!" + s
	}
	return s
}

// Format renders clauses back to canonical pattern text.
func Format(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}
