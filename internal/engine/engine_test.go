package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/compiler"
	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
	"github.com/roach88/motif/internal/pattern"
	"github.com/roach88/motif/internal/queryir"
	"github.com/roach88/motif/internal/store"
	"github.com/roach88/motif/internal/testutil"
)

// engines returns one instance of every engine, each with a private store.
func engines(t *testing.T) []Engine {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return []Engine{NewMemory(), NewSQLite(s)}
}

// mixedGraph has a string id "1" beside integer 1, a null-src edge and an
// edge to a vertex that does not exist.
func mixedGraph() *graph.Graph {
	vertices := graph.MustRelation([]string{"id", "name"},
		[]ir.IRValue{ir.IRInt(0), ir.IRString("zero")},
		[]ir.IRValue{ir.IRInt(1), ir.IRString("one")},
		[]ir.IRValue{ir.IRString("1"), ir.IRString("string one")},
	)
	edges := graph.MustRelation([]string{"src", "dst"},
		[]ir.IRValue{ir.IRInt(0), ir.IRInt(1)},
		[]ir.IRValue{ir.IRNull{}, ir.IRInt(0)},
		[]ir.IRValue{ir.IRString("1"), ir.IRString("ghost")},
	)
	return graph.MustNew(vertices, edges)
}

func edgeScan(prefix string) queryir.Scan {
	return queryir.Scan{Relation: queryir.Edges, Columns: []queryir.ScanColumn{
		{Field: queryir.FieldSrc, As: prefix + ".src"},
		{Field: queryir.FieldDst, As: prefix + ".dst"},
	}}
}

func vertexScan(prefix string) queryir.Scan {
	return queryir.Scan{Relation: queryir.Vertices, Columns: []queryir.ScanColumn{
		{Field: queryir.FieldID, As: prefix + ".id"},
		{Field: queryir.FieldRow, As: prefix + ".row"},
	}}
}

func run(t *testing.T, e Engine, g *graph.Graph, plan queryir.Plan) *graph.Relation {
	t.Helper()
	rel, err := e.Execute(context.Background(), g, plan)
	require.NoError(t, err, e.Name())
	return rel
}

func TestScan(t *testing.T) {
	g := mixedGraph()
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel := run(t, e, g, vertexScan("v"))
			assert.Equal(t, []string{"v.id", "v.row"}, rel.Columns())
			testutil.AssertSameRows(t, graph.MustRelation([]string{"v.id", "v.row"},
				[]ir.IRValue{ir.IRInt(0), g.Vertices().Object(0)},
				[]ir.IRValue{ir.IRInt(1), g.Vertices().Object(1)},
				[]ir.IRValue{ir.IRString("1"), g.Vertices().Object(2)},
			), rel)
		})
	}
}

func TestJoinKeysAreTyped(t *testing.T) {
	g := mixedGraph()
	plan := queryir.Project{
		Child: queryir.Join{
			Left:  edgeScan("e"),
			Right: vertexScan("s"),
			On:    []queryir.ColumnEquals{{Left: "e.src", Right: "s.id"}},
		},
		Columns: []queryir.ProjectColumn{{Source: "e.src", As: "src"}, {Source: "s.row", As: "s"}},
	}

	want := graph.MustRelation([]string{"src", "s"},
		[]ir.IRValue{ir.IRInt(0), g.Vertices().Object(0)},
		[]ir.IRValue{ir.IRString("1"), g.Vertices().Object(2)},
	)
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			testutil.AssertSameRows(t, want, run(t, e, g, plan))
		})
	}
}

func TestNullKeysNeverMatch(t *testing.T) {
	vertices := testutil.Vertices(0)
	edges := graph.MustRelation([]string{"src", "dst"},
		[]ir.IRValue{ir.IRNull{}, ir.IRNull{}},
		[]ir.IRValue{ir.IRNull{}, ir.IRInt(0)},
	)
	g := graph.MustNew(vertices, edges)

	// Pair edges whose src equals another edge's src.
	plan := queryir.Project{
		Child: queryir.Join{
			Left:  edgeScan("a"),
			Right: edgeScan("b"),
			On:    []queryir.ColumnEquals{{Left: "a.src", Right: "b.src"}},
		},
		Columns: []queryir.ProjectColumn{{Source: "a.dst", As: "x"}},
	}
	anti := queryir.AntiJoin{
		Left:  edgeScan("a"),
		Right: edgeScan("b"),
		On:    []queryir.ColumnEquals{{Left: "a.src", Right: "b.src"}},
	}

	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			assert.Equal(t, 0, run(t, e, g, plan).Len())
			assert.Equal(t, 2, run(t, e, g, anti).Len(), "a null key has no match to exclude it")
		})
	}
}

func TestCrossJoin(t *testing.T) {
	g := testutil.CanonicalGraph()
	plan := queryir.Join{Left: vertexScan("a"), Right: edgeScan("e")}
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel := run(t, e, g, plan)
			assert.Equal(t, []string{"a.id", "a.row", "e.src", "e.dst"}, rel.Columns())
			assert.Equal(t, 16, rel.Len())
		})
	}
}

func TestAntiJoinWithoutKeys(t *testing.T) {
	withEdges := testutil.CanonicalGraph()
	noEdges := graph.MustNew(testutil.Vertices(0, 1), testutil.Edges())
	plan := queryir.AntiJoin{Left: vertexScan("a"), Right: edgeScan("e")}

	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			assert.Equal(t, 0, run(t, e, withEdges, plan).Len())
			assert.Equal(t, 2, run(t, e, noEdges, plan).Len())
		})
	}
}

func TestAntiJoin(t *testing.T) {
	g := testutil.CanonicalGraph()
	// Vertices without outgoing edges.
	plan := queryir.Project{
		Child: queryir.AntiJoin{
			Left:  vertexScan("v"),
			Right: edgeScan("e"),
			On:    []queryir.ColumnEquals{{Left: "v.id", Right: "e.src"}},
		},
		Columns: []queryir.ProjectColumn{{Source: "v.id", As: "id"}},
	}
	want := graph.MustRelation([]string{"id"}, []ir.IRValue{ir.IRInt(3)})
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			testutil.AssertSameRows(t, want, run(t, e, g, plan))
		})
	}
}

func TestEmptyAndZeroColumns(t *testing.T) {
	g := testutil.CanonicalGraph()
	zero := queryir.Project{Child: vertexScan("v"), Columns: []queryir.ProjectColumn{}}

	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			empty := run(t, e, g, queryir.Empty{})
			assert.Empty(t, empty.Columns())
			assert.Equal(t, 0, empty.Len())

			rel := run(t, e, g, zero)
			assert.Empty(t, rel.Columns())
			assert.Equal(t, 4, rel.Len(), "one empty row per vertex")
		})
	}
}

func TestEdgeRowIDs(t *testing.T) {
	// Two parallel edges: a rid join tells them apart.
	g := graph.MustNew(testutil.Vertices(0, 1), testutil.Edges([2]int64{0, 1}, [2]int64{0, 1}))
	scan := func(prefix string) queryir.Scan {
		return queryir.Scan{Relation: queryir.Edges, Columns: []queryir.ScanColumn{
			{Field: queryir.FieldRID, As: prefix + ".rid"},
			{Field: queryir.FieldRow, As: prefix + ".row"},
		}}
	}
	plan := queryir.Join{
		Left:  scan("a"),
		Right: scan("b"),
		On:    []queryir.ColumnEquals{{Left: "a.rid", Right: "b.rid"}},
	}
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel := run(t, e, g, plan)
			require.Equal(t, 2, rel.Len())
			for i := 0; i < rel.Len(); i++ {
				a, _ := rel.Value(i, "a.row")
				b, _ := rel.Value(i, "b.row")
				assert.True(t, ir.Equal(a, b))
			}
		})
	}
}

func TestInvalidPlan(t *testing.T) {
	g := testutil.CanonicalGraph()
	bad := queryir.Join{
		Left:  vertexScan("a"),
		Right: vertexScan("a"),
	}
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			_, err := e.Execute(context.Background(), g, bad)
			require.Error(t, err)
			assert.True(t, IsInvalidPlan(err))
			assert.True(t, queryir.IsPlanError(err))
		})
	}
}

func TestCanceled(t *testing.T) {
	g := testutil.CanonicalGraph()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel, err := e.Execute(ctx, g, vertexScan("v"))
			require.Error(t, err)
			assert.Nil(t, rel)
			assert.True(t, IsCanceled(err), err.Error())
		})
	}
}

func TestSQLiteReloadsOnGraphChange(t *testing.T) {
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()
	e := NewSQLite(s)

	first := testutil.CanonicalGraph()
	second := graph.MustNew(testutil.Vertices(7), testutil.Edges())

	assert.Equal(t, 4, run(t, e, first, vertexScan("v")).Len())
	assert.Equal(t, 1, run(t, e, second, vertexScan("v")).Len())
	assert.Equal(t, 4, run(t, e, first, vertexScan("v")).Len())

	sql, err := e.SQL(vertexScan("v"))
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM vertices")
}

func compile(t *testing.T, input string) queryir.Plan {
	t.Helper()
	clauses, err := pattern.Parse(input)
	require.NoError(t, err)
	r, err := compiler.Resolve(clauses)
	require.NoError(t, err)
	plan, err := compiler.Compile(r)
	require.NoError(t, err)
	return plan
}

func TestEnginesAgree(t *testing.T) {
	patterns := []string{
		"",
		"()",
		"(a)",
		"(a); (b)",
		"(a)-[e]->(b)",
		"()-[e]->()",
		"(a)-[]->(a)",
		"(a)-[e]->(b); (b)-[e]->(a)",
		"(a)-[]->(b); (b)-[]->(c); (c)-[]->(a)",
		"(u)-[e]->(v); (v)-[]->(w); !(u)-[]->(w); !(w)-[]->(u)",
		"(a)-[]->(b); !(b)-[]->()",
		"(a)-[]->(); !()-[]->(a)",
		"(a)-[e]->(b); (c)",
	}
	graphs := map[string]*graph.Graph{
		"canonical":   testutil.CanonicalGraph(),
		"cycle chord": testutil.CycleChordGraph(),
		"mixed":       mixedGraph(),
		"self loop":   graph.MustNew(testutil.Vertices(0, 1), testutil.Edges([2]int64{0, 0}, [2]int64{0, 1}, [2]int64{1, 0})),
	}

	memory := NewMemory()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()
	sqlite := NewSQLite(s)

	for gname, g := range graphs {
		for _, input := range patterns {
			t.Run(gname+"/"+input, func(t *testing.T) {
				plan := compile(t, input)
				testutil.AssertSameRows(t, run(t, memory, g, plan), run(t, sqlite, g, plan))
			})
		}
	}
}

func TestTriangleRotations(t *testing.T) {
	plan := compile(t, "(a)-[]->(b); (b)-[]->(c); (c)-[]->(a)")
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel := run(t, e, testutil.CycleChordGraph(), plan)
			assert.Equal(t, []string{"a", "b", "c"}, rel.Columns())
			assert.Equal(t, [][]string{{"0", "1", "2"}, {"1", "2", "0"}, {"2", "0", "1"}}, testutil.KeyRows(rel))
		})
	}
}

func TestNegatedPath(t *testing.T) {
	plan := compile(t, "(u)-[e]->(v); (v)-[]->(w); !(u)-[]->(w); !(w)-[]->(u)")
	for _, e := range engines(t) {
		t.Run(e.Name(), func(t *testing.T) {
			rel := run(t, e, testutil.CanonicalGraph(), plan)
			assert.Equal(t, []string{"u", "e", "v", "w"}, rel.Columns())
			assert.Equal(t, [][]string{{"1", "[1,2]", "2", "3"}}, testutil.KeyRows(rel))
		})
	}
}
