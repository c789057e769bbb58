package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
	"github.com/roach88/motif/internal/queryir"
)

// Memory evaluates plans over the in-memory relations of a graph.
//
// Joins build a B-tree index over the right input and probe it with each
// left row, so output rows follow left-input order.
type Memory struct {
	logger *slog.Logger
}

// NewMemory creates a Memory engine.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{logger: o.logger}
}

// Name implements Engine.
func (m *Memory) Name() string { return NameMemory }

// table is an intermediate result.
type table struct {
	columns []string
	rows    [][]ir.IRValue
}

func (t *table) col(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Execute implements Engine.
func (m *Memory) Execute(ctx context.Context, g *graph.Graph, plan queryir.Plan) (*graph.Relation, error) {
	if err := queryir.Validate(plan); err != nil {
		return nil, newInvalidPlan(NameMemory, err)
	}

	ev := &evaluator{ctx: ctx, g: g}
	t, err := ev.eval(plan)
	if err != nil {
		return nil, err
	}

	rel, err := graph.NewRelation(t.columns, t.rows)
	if err != nil {
		return nil, newBackend(NameMemory, "build result", err)
	}

	m.logger.Debug("plan executed",
		"engine", NameMemory,
		"columns", t.columns,
		"rows", rel.Len(),
		"steps", ev.steps)
	return rel, nil
}

type evaluator struct {
	ctx   context.Context
	g     *graph.Graph
	steps int // rows produced so far, across all nodes
}

// tick counts produced rows and checks for cancellation periodically.
func (ev *evaluator) tick() error {
	ev.steps++
	if ev.steps%checkEvery == 0 {
		if err := ev.ctx.Err(); err != nil {
			return newCanceled(NameMemory, err)
		}
	}
	return nil
}

func (ev *evaluator) eval(p queryir.Plan) (*table, error) {
	if err := ev.ctx.Err(); err != nil {
		return nil, newCanceled(NameMemory, err)
	}

	switch node := queryir.Deref(p).(type) {
	case queryir.Scan:
		return ev.scan(node)
	case queryir.Join:
		return ev.join(node)
	case queryir.AntiJoin:
		return ev.antiJoin(node)
	case queryir.Project:
		return ev.project(node)
	case queryir.Empty:
		return &table{columns: []string{}, rows: [][]ir.IRValue{}}, nil
	default:
		return nil, newInvalidPlan(NameMemory, fmt.Errorf("unsupported plan node: %T", p))
	}
}

func (ev *evaluator) scan(s queryir.Scan) (*table, error) {
	rel := ev.g.Vertices()
	if s.Relation == queryir.Edges {
		rel = ev.g.Edges()
	}

	t := &table{columns: make([]string, len(s.Columns)), rows: make([][]ir.IRValue, 0, rel.Len())}
	for i, c := range s.Columns {
		t.columns[i] = c.As
	}

	for i := 0; i < rel.Len(); i++ {
		row := make([]ir.IRValue, len(s.Columns))
		for j, c := range s.Columns {
			switch c.Field {
			case queryir.FieldRow:
				row[j] = rel.Object(i)
			case queryir.FieldRID:
				row[j] = ir.IRInt(i)
			default:
				v, _ := rel.Value(i, c.Field)
				row[j] = v
			}
		}
		t.rows = append(t.rows, row)
		if err := ev.tick(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// keyColumns resolves the column positions of an On list on both inputs.
func keyColumns(left, right *table, on []queryir.ColumnEquals) (lcols, rcols []int) {
	lcols = make([]int, len(on))
	rcols = make([]int, len(on))
	for i, eq := range on {
		lcols[i] = left.col(eq.Left)
		rcols[i] = right.col(eq.Right)
	}
	return lcols, rcols
}

func (ev *evaluator) join(j queryir.Join) (*table, error) {
	left, err := ev.eval(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(j.Right)
	if err != nil {
		return nil, err
	}

	out := &table{columns: append(append([]string{}, left.columns...), right.columns...)}
	emit := func(l, r []ir.IRValue) error {
		row := make([]ir.IRValue, 0, len(l)+len(r))
		row = append(row, l...)
		out.rows = append(out.rows, append(row, r...))
		return ev.tick()
	}

	if len(j.On) == 0 {
		for _, l := range left.rows {
			for _, r := range right.rows {
				if err := emit(l, r); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	}

	lcols, rcols := keyColumns(left, right, j.On)
	ix := buildIndex(right, rcols)
	for _, l := range left.rows {
		key, ok := joinKey(l, lcols)
		if !ok {
			continue
		}
		var emitErr error
		ix.each(key, func(r int) bool {
			emitErr = emit(l, right.rows[r])
			return emitErr == nil
		})
		if emitErr != nil {
			return nil, emitErr
		}
	}
	return out, nil
}

func (ev *evaluator) antiJoin(a queryir.AntiJoin) (*table, error) {
	left, err := ev.eval(a.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(a.Right)
	if err != nil {
		return nil, err
	}

	out := &table{columns: left.columns, rows: [][]ir.IRValue{}}
	if len(a.On) == 0 {
		if len(right.rows) == 0 {
			out.rows = left.rows
		}
		return out, nil
	}

	lcols, rcols := keyColumns(left, right, a.On)
	ix := buildIndex(right, rcols)
	for _, l := range left.rows {
		if key, ok := joinKey(l, lcols); ok && ix.has(key) {
			continue
		}
		out.rows = append(out.rows, l)
		if err := ev.tick(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (ev *evaluator) project(p queryir.Project) (*table, error) {
	child, err := ev.eval(p.Child)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(p.Columns))
	out := &table{columns: make([]string, len(p.Columns)), rows: make([][]ir.IRValue, 0, len(child.rows))}
	for i, c := range p.Columns {
		idx[i] = child.col(c.Source)
		out.columns[i] = c.As
	}
	for _, r := range child.rows {
		row := make([]ir.IRValue, len(idx))
		for i, j := range idx {
			row[i] = r[j]
		}
		out.rows = append(out.rows, row)
	}
	return out, nil
}
