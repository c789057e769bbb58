package graph

import (
	"fmt"

	"github.com/roach88/motif/internal/expr"
	"github.com/roach88/motif/internal/ir"
)

// FilterVertices returns a Graph whose vertex relation keeps only the rows
// satisfying pred. The edge relation is shared unchanged and may now
// reference removed ids.
func (g *Graph) FilterVertices(pred expr.Expr) (*Graph, error) {
	vertices, err := filterRelation(g.vertices, pred)
	if err != nil {
		return nil, fmt.Errorf("filter vertices: %w", err)
	}
	return derive(vertices, g.edges), nil
}

// FilterVerticesWhere parses a text predicate and applies FilterVertices.
func (g *Graph) FilterVerticesWhere(predicate string) (*Graph, error) {
	pred, err := expr.Parse(predicate)
	if err != nil {
		return nil, fmt.Errorf("filter vertices: %w", err)
	}
	return g.FilterVertices(pred)
}

// FilterEdges returns a Graph whose edge relation keeps only the rows
// satisfying pred. The vertex relation is shared unchanged.
func (g *Graph) FilterEdges(pred expr.Expr) (*Graph, error) {
	edges, err := filterRelation(g.edges, pred)
	if err != nil {
		return nil, fmt.Errorf("filter edges: %w", err)
	}
	return derive(g.vertices, edges), nil
}

// FilterEdgesWhere parses a text predicate and applies FilterEdges.
func (g *Graph) FilterEdgesWhere(predicate string) (*Graph, error) {
	pred, err := expr.Parse(predicate)
	if err != nil {
		return nil, fmt.Errorf("filter edges: %w", err)
	}
	return g.FilterEdges(pred)
}

// DropIsolatedVertices returns a Graph whose vertex relation keeps only
// vertices whose id appears as src or dst of some edge. This is a
// semi-join against the union of the edge endpoint columns.
func (g *Graph) DropIsolatedVertices() *Graph {
	endpoints := make(map[string]struct{}, 2*g.edges.Len())
	srcIdx := g.edges.ColumnIndex(ColumnSrc)
	dstIdx := g.edges.ColumnIndex(ColumnDst)
	for _, row := range g.edges.rows {
		for _, v := range []ir.IRValue{row[srcIdx], row[dstIdx]} {
			if !ir.IsNull(v) {
				endpoints[ir.Key(v)] = struct{}{}
			}
		}
	}

	idIdx := g.vertices.ColumnIndex(ColumnID)
	vertices := g.vertices.keepRows(func(i int) bool {
		_, ok := endpoints[ir.Key(g.vertices.rows[i][idIdx])]
		return ok
	})
	return derive(vertices, g.edges)
}

// filterRelation checks pred against r's columns, then keeps matching rows.
// Any evaluation error aborts the whole filter.
func filterRelation(r *Relation, pred expr.Expr) (*Relation, error) {
	if err := expr.Check(pred, r.columns); err != nil {
		return nil, err
	}
	return r.selectRows(func(i int) (bool, error) {
		return expr.Matches(pred, r.RowView(i))
	})
}
