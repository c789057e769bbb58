package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/expr"
	"github.com/roach88/motif/internal/ir"
)

// peopleGraph: 0->1, 1->2, 2->3, 2->0 plus vertex 4 with no edges.
func peopleGraph(t *testing.T) *Graph {
	t.Helper()
	v := MustRelation([]string{"id", "name", "age"},
		[]ir.IRValue{ir.IRInt(0), ir.IRString("a"), ir.IRInt(20)},
		[]ir.IRValue{ir.IRInt(1), ir.IRString("b"), ir.IRInt(30)},
		[]ir.IRValue{ir.IRInt(2), ir.IRString("c"), ir.IRInt(40)},
		[]ir.IRValue{ir.IRInt(3), ir.IRString("d"), ir.IRNull{}},
		[]ir.IRValue{ir.IRInt(4), ir.IRString("e"), ir.IRInt(50)},
	)
	e := MustRelation([]string{"src", "dst", "weight"},
		[]ir.IRValue{ir.IRInt(0), ir.IRInt(1), ir.IRInt(1)},
		[]ir.IRValue{ir.IRInt(1), ir.IRInt(2), ir.IRInt(2)},
		[]ir.IRValue{ir.IRInt(2), ir.IRInt(3), ir.IRInt(3)},
		[]ir.IRValue{ir.IRInt(2), ir.IRInt(0), ir.IRInt(4)},
	)
	g, err := New(v, e)
	require.NoError(t, err)
	return g
}

func ids(t *testing.T, r *Relation) []int64 {
	t.Helper()
	var out []int64
	for i := 0; i < r.Len(); i++ {
		v, ok := r.Value(i, ColumnID)
		require.True(t, ok)
		out = append(out, int64(v.(ir.IRInt)))
	}
	return out
}

func TestNewValidation(t *testing.T) {
	edges := MustRelation([]string{"src", "dst"})

	_, err := New(MustRelation([]string{"name"}), edges)
	assert.ErrorContains(t, err, `no "id" column`)

	dup := MustRelation([]string{"id"}, []ir.IRValue{ir.IRInt(1)}, []ir.IRValue{ir.IRInt(1)})
	_, err = New(dup, edges)
	assert.ErrorContains(t, err, "share id 1")

	nullID := MustRelation([]string{"id"}, []ir.IRValue{ir.IRNull{}})
	_, err = New(nullID, edges)
	assert.ErrorContains(t, err, "id must be a string or integer")

	_, err = New(MustRelation([]string{"id"}), MustRelation([]string{"src"}))
	assert.ErrorContains(t, err, `no "dst" column`)

	boolSrc := MustRelation([]string{"src", "dst"}, []ir.IRValue{ir.IRBool(true), ir.IRInt(1)})
	_, err = New(MustRelation([]string{"id"}), boolSrc)
	assert.ErrorContains(t, err, "src must be a string, integer or null")

	// Int 1 and string "1" are different ids.
	mixed := MustRelation([]string{"id"}, []ir.IRValue{ir.IRInt(1)}, []ir.IRValue{ir.IRString("1")})
	_, err = New(mixed, edges)
	assert.NoError(t, err)

	// Dangling and null endpoints are allowed.
	dangling := MustRelation([]string{"src", "dst"},
		[]ir.IRValue{ir.IRInt(9), ir.IRInt(10)},
		[]ir.IRValue{ir.IRNull{}, ir.IRInt(1)},
	)
	_, err = New(MustRelation([]string{"id"}), dangling)
	assert.NoError(t, err)
}

func TestRelationAccessorsCopy(t *testing.T) {
	r := MustRelation([]string{"id", "x"}, []ir.IRValue{ir.IRInt(1), nil})

	v, ok := r.Value(0, "x")
	require.True(t, ok)
	assert.Equal(t, ir.IRNull{}, v, "nil is stored as IRNull")

	cols := r.Columns()
	cols[0] = "mutated"
	assert.Equal(t, []string{"id", "x"}, r.Columns())

	row := r.Row(0)
	row[0] = ir.IRInt(99)
	assert.Equal(t, ir.IRObject{"id": ir.IRInt(1), "x": ir.IRNull{}}, r.Object(0))

	_, err := NewRelation([]string{"a", "a"}, nil)
	assert.ErrorContains(t, err, "duplicate column")

	_, err = NewRelation([]string{"a"}, [][]ir.IRValue{{ir.IRInt(1), ir.IRInt(2)}})
	assert.ErrorContains(t, err, "row 0 has 2 values")
}

func TestRelationFromObjects(t *testing.T) {
	r, err := RelationFromObjects([]string{"id"}, []ir.IRObject{
		{"id": ir.IRInt(1), "zeta": ir.IRBool(true)},
		{"id": ir.IRInt(2), "alpha": ir.IRString("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "alpha", "zeta"}, r.Columns())
	assert.Equal(t, []ir.IRValue{ir.IRInt(1), ir.IRNull{}, ir.IRBool(true)}, r.Row(0))
}

func TestFilterVertices(t *testing.T) {
	g := peopleGraph(t)

	filtered, err := g.FilterVerticesWhere("age > 25")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, ids(t, filtered.Vertices()))
	assert.Same(t, g.Edges(), filtered.Edges(), "edges are untouched")
	assert.Equal(t, 5, g.Vertices().Len(), "original graph is not mutated")
	assert.NotEqual(t, g.Token(), filtered.Token())
}

func TestFilterTextAndStructuredAgree(t *testing.T) {
	g := peopleGraph(t)

	byText, err := g.FilterVerticesWhere("age >= 30 AND name != 'e'")
	require.NoError(t, err)
	byExpr, err := g.FilterVertices(expr.AllOf(
		expr.Ge(expr.Col("age"), expr.Lit(ir.IRInt(30))),
		expr.Ne(expr.Col("name"), expr.Lit(ir.IRString("e"))),
	))
	require.NoError(t, err)

	h1, err := byText.Vertices().Hash()
	require.NoError(t, err)
	h2, err := byExpr.Vertices().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, []int64{1, 2}, ids(t, byText.Vertices()))
}

func TestFilterIdempotent(t *testing.T) {
	g := peopleGraph(t)

	once, err := g.FilterEdgesWhere("weight >= 2")
	require.NoError(t, err)
	twice, err := once.FilterEdgesWhere("weight >= 2")
	require.NoError(t, err)

	h1, err := once.Edges().Hash()
	require.NoError(t, err)
	h2, err := twice.Edges().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 3, once.Edges().Len())
	assert.Same(t, g.Vertices(), once.Vertices())

	v1, err := g.FilterVerticesWhere("age < 45")
	require.NoError(t, err)
	v2, err := v1.FilterVerticesWhere("age < 45")
	require.NoError(t, err)
	assert.Equal(t, ids(t, v1.Vertices()), ids(t, v2.Vertices()))
}

func TestFilterErrors(t *testing.T) {
	g := peopleGraph(t)

	_, err := g.FilterVerticesWhere("age >")
	require.Error(t, err)
	assert.True(t, expr.IsPredicateError(err))

	_, err = g.FilterVerticesWhere("height > 3")
	require.Error(t, err)
	assert.True(t, expr.IsPredicateError(err))

	_, err = g.FilterEdges(expr.Gt(expr.Col("weight"), expr.Lit(ir.IRString("x"))))
	require.Error(t, err)
	assert.True(t, expr.IsPredicateError(err))
}

func TestFilterErrorsIgnoreTermOrder(t *testing.T) {
	g := peopleGraph(t)

	for _, where := range []string{"name > 3 AND age > 100", "age > 100 AND name > 3"} {
		_, err := g.FilterVerticesWhere(where)
		require.Error(t, err, where)
		assert.True(t, expr.IsPredicateError(err), where)
	}
}

func TestDropIsolatedVertices(t *testing.T) {
	g := peopleGraph(t)

	dropped := g.DropIsolatedVertices()
	assert.Equal(t, []int64{0, 1, 2, 3}, ids(t, dropped.Vertices()))
	assert.Same(t, g.Edges(), dropped.Edges())

	again := dropped.DropIsolatedVertices()
	assert.Equal(t, ids(t, dropped.Vertices()), ids(t, again.Vertices()), "fixed point")
}

func TestDropIsolatedAfterEdgeFilter(t *testing.T) {
	g := peopleGraph(t)

	onlyHeavy, err := g.FilterEdgesWhere("weight = 3")
	require.NoError(t, err)

	dropped := onlyHeavy.DropIsolatedVertices()
	assert.Equal(t, []int64{2, 3}, ids(t, dropped.Vertices()))
}
