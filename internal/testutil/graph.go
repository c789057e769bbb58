package testutil

import (
	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
)

// CanonicalGraph returns the four-vertex graph with edges 0->1, 1->2, 2->3
// and 2->0. Vertices carry a "name"; edges carry a "weight" equal to their
// position plus one.
func CanonicalGraph() *graph.Graph {
	return graph.MustNew(
		graph.MustRelation([]string{"id", "name"},
			[]ir.IRValue{ir.IRInt(0), ir.IRString("a")},
			[]ir.IRValue{ir.IRInt(1), ir.IRString("b")},
			[]ir.IRValue{ir.IRInt(2), ir.IRString("c")},
			[]ir.IRValue{ir.IRInt(3), ir.IRString("d")},
		),
		Edges([2]int64{0, 1}, [2]int64{1, 2}, [2]int64{2, 3}, [2]int64{2, 0}),
	)
}

// CycleChordGraph returns the cycle 0->1->2->3->0 plus the chord 2->0. Its
// only directed triangle is 0->1->2->0.
func CycleChordGraph() *graph.Graph {
	return graph.MustNew(
		Vertices(0, 1, 2, 3),
		Edges([2]int64{0, 1}, [2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 0}, [2]int64{2, 0}),
	)
}

// Vertices builds a vertex relation with integer ids and no attributes.
func Vertices(ids ...int64) *graph.Relation {
	rows := make([][]ir.IRValue, len(ids))
	for i, id := range ids {
		rows[i] = []ir.IRValue{ir.IRInt(id)}
	}
	return graph.MustRelation([]string{"id"}, rows...)
}

// Edges builds an edge relation from (src, dst) pairs with a "weight"
// column equal to position plus one.
func Edges(pairs ...[2]int64) *graph.Relation {
	rows := make([][]ir.IRValue, len(pairs))
	for i, p := range pairs {
		rows[i] = []ir.IRValue{ir.IRInt(p[0]), ir.IRInt(p[1]), ir.IRInt(int64(i + 1))}
	}
	return graph.MustRelation([]string{"src", "dst", "weight"}, rows...)
}
