package engine

import (
	"github.com/tidwall/btree"

	"github.com/roach88/motif/internal/ir"
)

// joinItem is one indexed row: the canonical key of its join columns and
// its position in the table.
type joinItem struct {
	key string
	row int
}

func joinItemLess(a, b joinItem) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.row < b.row
}

// joinIndex maps join keys to row positions. Rows whose key has a null
// component are never indexed, so they never match.
type joinIndex struct {
	tree *btree.BTreeG[joinItem]
}

func buildIndex(t *table, cols []int) *joinIndex {
	ix := &joinIndex{tree: btree.NewBTreeG[joinItem](joinItemLess)}
	for i, row := range t.rows {
		if key, ok := joinKey(row, cols); ok {
			ix.tree.Set(joinItem{key: key, row: i})
		}
	}
	return ix
}

// each calls fn for every row stored under key, in row order, until fn
// returns false.
func (ix *joinIndex) each(key string, fn func(row int) bool) {
	ix.tree.Ascend(joinItem{key: key, row: -1}, func(item joinItem) bool {
		if item.key != key {
			return false
		}
		return fn(item.row)
	})
}

func (ix *joinIndex) has(key string) bool {
	found := false
	ix.each(key, func(int) bool {
		found = true
		return false
	})
	return found
}

// joinKey encodes the values at cols. ok is false when any of them is
// null.
func joinKey(row []ir.IRValue, cols []int) (string, bool) {
	vals := make(ir.IRArray, len(cols))
	for i, c := range cols {
		if ir.IsNull(row[c]) {
			return "", false
		}
		vals[i] = row[c]
	}
	return ir.Key(vals), true
}
