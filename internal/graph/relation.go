package graph

import (
	"fmt"
	"slices"

	"github.com/roach88/motif/internal/ir"
)

// Relation is an ordered column list with an unordered collection of rows.
//
// A Relation is immutable once constructed: every accessor returns copies,
// and every transformation returns a new Relation. Rows may be shared
// between relations because nothing ever writes to them.
type Relation struct {
	columns []string
	index   map[string]int
	rows    [][]ir.IRValue
}

// NewRelation builds a relation, copying columns and rows. Each row must
// have one value per column; nil values are stored as ir.IRNull.
func NewRelation(columns []string, rows [][]ir.IRValue) (*Relation, error) {
	r, err := newShell(columns)
	if err != nil {
		return nil, err
	}
	r.rows = make([][]ir.IRValue, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, relation has %d columns", i, len(row), len(columns))
		}
		cp := make([]ir.IRValue, len(row))
		for j, v := range row {
			if v == nil {
				v = ir.IRNull{}
			}
			cp[j] = v
		}
		r.rows[i] = cp
	}
	return r, nil
}

// MustRelation is like NewRelation but panics on error.
// Use only in tests or for literal fixtures.
func MustRelation(columns []string, rows ...[]ir.IRValue) *Relation {
	r, err := NewRelation(columns, rows)
	if err != nil {
		panic(err)
	}
	return r
}

// RelationFromObjects builds a relation from attribute maps. Columns are
// the given leading columns followed by every other key seen, in
// lexical order. Missing attributes are null.
func RelationFromObjects(leading []string, objects []ir.IRObject) (*Relation, error) {
	columns := slices.Clone(leading)
	seen := make(map[string]bool, len(leading))
	for _, c := range leading {
		seen[c] = true
	}
	var extra []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	columns = append(columns, extra...)

	rows := make([][]ir.IRValue, len(objects))
	for i, obj := range objects {
		row := make([]ir.IRValue, len(columns))
		for j, c := range columns {
			if v, ok := obj[c]; ok {
				row[j] = v
			} else {
				row[j] = ir.IRNull{}
			}
		}
		rows[i] = row
	}
	return NewRelation(columns, rows)
}

// EmptyRelation returns a relation with the given columns and no rows.
func EmptyRelation(columns []string) *Relation {
	r, err := newShell(columns)
	if err != nil {
		panic(err)
	}
	return r
}

func newShell(columns []string) (*Relation, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	return &Relation{columns: slices.Clone(columns), index: index}, nil
}

// Columns returns the column names in order.
func (r *Relation) Columns() []string {
	return slices.Clone(r.columns)
}

// Width returns the number of columns.
func (r *Relation) Width() int {
	return len(r.columns)
}

// Len returns the number of rows.
func (r *Relation) Len() int {
	return len(r.rows)
}

// ColumnIndex returns the position of a column, or -1.
func (r *Relation) ColumnIndex(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the relation has the named column.
func (r *Relation) HasColumn(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Row returns a copy of row i.
func (r *Relation) Row(i int) []ir.IRValue {
	return slices.Clone(r.rows[i])
}

// Value returns the value of column name in row i.
func (r *Relation) Value(i int, name string) (ir.IRValue, bool) {
	j, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.rows[i][j], true
}

// Object bundles row i as a column -> value object.
func (r *Relation) Object(i int) ir.IRObject {
	obj := make(ir.IRObject, len(r.columns))
	for j, c := range r.columns {
		obj[c] = r.rows[i][j]
	}
	return obj
}

// RowView exposes row i for predicate evaluation without copying.
func (r *Relation) RowView(i int) RowView {
	return RowView{rel: r, i: i}
}

// RowView reads columns of one row of a relation.
type RowView struct {
	rel *Relation
	i   int
}

// Lookup implements expr.Row.
func (v RowView) Lookup(column string) (ir.IRValue, bool) {
	return v.rel.Value(v.i, column)
}

// selectRows returns a relation sharing r's columns with the rows whose
// index satisfies keep.
func (r *Relation) selectRows(keep func(i int) (bool, error)) (*Relation, error) {
	out := &Relation{columns: r.columns, index: r.index}
	for i, row := range r.rows {
		ok, err := keep(i)
		if err != nil {
			return nil, err
		}
		if ok {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// keepRows is selectRows for predicates that cannot fail.
func (r *Relation) keepRows(keep func(i int) bool) *Relation {
	out := &Relation{columns: r.columns, index: r.index}
	for i, row := range r.rows {
		if keep(i) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Hash fingerprints the relation as a column list plus a multiset of
// rows; row order does not affect the result.
func (r *Relation) Hash() (string, error) {
	hashes, err := r.RowHashes()
	if err != nil {
		return "", err
	}
	slices.Sort(hashes)
	return ir.RelationHash(r.columns, hashes)
}

// RowHashes returns one fingerprint per row, in row order.
func (r *Relation) RowHashes() ([]string, error) {
	hashes := make([]string, len(r.rows))
	for i, row := range r.rows {
		h, err := ir.RowHash(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		hashes[i] = h
	}
	return hashes, nil
}
