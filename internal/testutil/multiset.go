package testutil

import (
	"slices"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
)

// Multiset counts the rows of r by canonical encoding.
func Multiset(r *graph.Relation) map[string]int {
	m := make(map[string]int, r.Len())
	for i := 0; i < r.Len(); i++ {
		m[ir.Key(ir.IRArray(r.Row(i)))]++
	}
	return m
}

// TestingT is the subset of *testing.T the assertions need.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertSameRows checks that two relations have the same columns, in order,
// and the same rows as a multiset.
func AssertSameRows(t TestingT, want, got *graph.Relation, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Equal(t, want.Columns(), got.Columns(), msgAndArgs...) {
		return false
	}
	return assert.Equal(t, Multiset(want), Multiset(got), msgAndArgs...)
}

// KeyRows projects every bundle column of r to a key: the "id" of vertex
// bundles, or the [src, dst] pair of edge bundles, as canonical JSON. Rows are returned sorted so they
// can be compared with a literal.
func KeyRows(r *graph.Relation) [][]string {
	out := make([][]string, r.Len())
	for i := 0; i < r.Len(); i++ {
		row := r.Row(i)
		keys := make([]string, len(row))
		for j, v := range row {
			keys[j] = bundleKey(v)
		}
		out[i] = keys
	}
	slices.SortFunc(out, func(a, b []string) int { return slices.Compare(a, b) })
	return out
}

func bundleKey(v ir.IRValue) string {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return ir.String(v)
	}
	if id, ok := obj[graph.ColumnID]; ok {
		return ir.String(id)
	}
	return ir.String(ir.IRArray{obj[graph.ColumnSrc], obj[graph.ColumnDst]})
}
