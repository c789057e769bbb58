package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/motif/internal/ir"
)

// Reserved column names.
const (
	ColumnID  = "id"
	ColumnSrc = "src"
	ColumnDst = "dst"
)

// Graph pairs a vertex relation with an edge relation.
//
// A Graph has no identity beyond its two relations. It is never mutated:
// FilterVertices, FilterEdges and DropIsolatedVertices return new values,
// so one Graph can serve any number of concurrent queries.
type Graph struct {
	vertices *Relation
	edges    *Relation
	token    string
}

// New validates the relation pair and returns a Graph.
//
// The vertex relation must have an "id" column whose values are unique,
// non-null strings or integers. The edge relation must have "src" and
// "dst" columns holding strings, integers, or null. Edges may reference
// ids that do not exist in the vertex relation.
func New(vertices, edges *Relation) (*Graph, error) {
	if vertices == nil || edges == nil {
		return nil, fmt.Errorf("graph needs both a vertex and an edge relation")
	}
	if err := validateVertices(vertices); err != nil {
		return nil, err
	}
	if err := validateEdges(edges); err != nil {
		return nil, err
	}
	return &Graph{vertices: vertices, edges: edges, token: uuid.NewString()}, nil
}

// MustNew is like New but panics on error.
// Use only in tests or for literal fixtures.
func MustNew(vertices, edges *Relation) *Graph {
	g, err := New(vertices, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// Vertices returns the vertex relation.
func (g *Graph) Vertices() *Relation { return g.vertices }

// Edges returns the edge relation.
func (g *Graph) Edges() *Relation { return g.edges }

// Token returns an opaque identifier unique to this Graph value. Engines
// that stage relations (the SQLite store) use it to detect when a graph
// they already loaded is being queried again.
func (g *Graph) Token() string { return g.token }

// derive builds a Graph from relations already known to be valid.
func derive(vertices, edges *Relation) *Graph {
	return &Graph{vertices: vertices, edges: edges, token: uuid.NewString()}
}

func validateVertices(r *Relation) error {
	idx := r.ColumnIndex(ColumnID)
	if idx < 0 {
		return fmt.Errorf("vertex relation has no %q column", ColumnID)
	}
	seen := make(map[string]int, r.Len())
	for i, row := range r.rows {
		id := row[idx]
		if !IsKeyValue(id) {
			return fmt.Errorf("vertex row %d: id must be a string or integer, got %s", i, ir.KindOf(id))
		}
		key := ir.Key(id)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("vertex rows %d and %d share id %s", prev, i, ir.String(id))
		}
		seen[key] = i
	}
	return nil
}

func validateEdges(r *Relation) error {
	for _, col := range []string{ColumnSrc, ColumnDst} {
		idx := r.ColumnIndex(col)
		if idx < 0 {
			return fmt.Errorf("edge relation has no %q column", col)
		}
		for i, row := range r.rows {
			if v := row[idx]; !ir.IsNull(v) && !IsKeyValue(v) {
				return fmt.Errorf("edge row %d: %s must be a string, integer or null, got %s", i, col, ir.KindOf(v))
			}
		}
	}
	return nil
}

// IsKeyValue reports whether v can be used as a vertex id.
func IsKeyValue(v ir.IRValue) bool {
	switch v.(type) {
	case ir.IRString, ir.IRInt:
		return true
	}
	return false
}
