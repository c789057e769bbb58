package compiler

import (
	"fmt"

	"github.com/roach88/motif/internal/queryir"
)

// Compile folds resolved clauses into a logical plan.
//
// Positive clauses join their base relation against the frontier on every
// already bound column (a cross join when none is bound). Named vertex slots
// always join the vertex relation so their row bundle is available; anonymous
// vertex slots inside an edge clause do not. Negated clauses become
// anti-joins against the edge relation. A final Project keeps the visible
// bindings in output order.
//
// The empty pattern compiles to queryir.Empty.
func Compile(r *Resolution) (queryir.Plan, error) {
	if len(r.Clauses) == 0 {
		return queryir.Empty{}, nil
	}

	c := &compiler{next: r.Generated()}
	var f frontier
	for _, rc := range r.Clauses {
		var err error
		switch {
		case !rc.Edge:
			f = c.vertex(f, rc)
		case rc.Negated:
			f, err = c.negated(f, rc)
		default:
			f = c.edge(f, rc)
		}
		if err != nil {
			return nil, err
		}
	}

	if f.plan == nil {
		return nil, &CompileError{Code: ErrCodeInvalidPlan, Message: "pattern binds nothing"}
	}

	project := queryir.Project{Child: f.plan, Columns: make([]queryir.ProjectColumn, 0, len(r.Output))}
	for _, b := range r.Output {
		source := b.Column + "." + queryir.FieldRow
		if !f.has(source) {
			return nil, &CompileError{
				Code:    ErrCodeUnknownOutput,
				Message: fmt.Sprintf("output %s %q has no column %q in the frontier", b.Kind, b.Name, source),
			}
		}
		project.Columns = append(project.Columns, queryir.ProjectColumn{Source: source, As: string(b.Name)})
	}

	if err := queryir.Validate(project); err != nil {
		return nil, &CompileError{Code: ErrCodeInvalidPlan, Message: "compiled plan is inconsistent", Err: err}
	}
	return project, nil
}

// frontier is the plan built so far together with its columns.
type frontier struct {
	plan    queryir.Plan
	columns []string
}

func (f frontier) has(col string) bool {
	for _, c := range f.columns {
		if c == col {
			return true
		}
	}
	return false
}

// join returns a new frontier joining f with scan. The first scan seeds the
// frontier.
func (f frontier) join(scan queryir.Scan, on []queryir.ColumnEquals) frontier {
	cols := make([]string, 0, len(f.columns)+len(scan.Columns))
	cols = append(cols, f.columns...)
	for _, sc := range scan.Columns {
		cols = append(cols, sc.As)
	}
	if f.plan == nil {
		return frontier{plan: scan, columns: cols}
	}
	return frontier{
		plan:    queryir.Join{Left: f.plan, Right: scan, On: on},
		columns: cols,
	}
}

type compiler struct {
	next int // last generated name, shared with the resolver's numbering
}

func (c *compiler) fresh() string {
	c.next++
	return fmt.Sprintf("#%d", c.next)
}

func col(prefix, field string) string { return prefix + "." + field }

func vertexScan(prefix string, withRow bool) queryir.Scan {
	cols := []queryir.ScanColumn{{Field: queryir.FieldID, As: col(prefix, queryir.FieldID)}}
	if withRow {
		cols = append(cols, queryir.ScanColumn{Field: queryir.FieldRow, As: col(prefix, queryir.FieldRow)})
	}
	return queryir.Scan{Relation: queryir.Vertices, Columns: cols}
}

func (c *compiler) vertex(f frontier, rc ResolvedClause) frontier {
	b := rc.Vertex.Binding
	if !rc.Vertex.Named() {
		return f.join(vertexScan(b.Column, false), nil)
	}
	if f.has(col(b.Column, queryir.FieldID)) {
		return f
	}
	return f.join(vertexScan(b.Column, true), nil)
}

func (c *compiler) edge(f frontier, rc ResolvedClause) frontier {
	edge := rc.EdgeRef.Binding
	named := rc.EdgeRef.Named()
	reused := named && f.has(col(edge.Column, queryir.FieldRID))

	alias := edge.Column
	if reused {
		alias = c.fresh()
	}

	scan := queryir.Scan{Relation: queryir.Edges}
	if named {
		scan.Columns = append(scan.Columns, queryir.ScanColumn{Field: queryir.FieldRID, As: col(alias, queryir.FieldRID)})
	}
	scan.Columns = append(scan.Columns,
		queryir.ScanColumn{Field: queryir.FieldSrc, As: col(alias, queryir.FieldSrc)},
		queryir.ScanColumn{Field: queryir.FieldDst, As: col(alias, queryir.FieldDst)},
	)
	if named && !reused {
		scan.Columns = append(scan.Columns, queryir.ScanColumn{Field: queryir.FieldRow, As: col(alias, queryir.FieldRow)})
	}

	var on []queryir.ColumnEquals
	if reused {
		on = append(on, queryir.ColumnEquals{Left: col(edge.Column, queryir.FieldRID), Right: col(alias, queryir.FieldRID)})
	}
	for _, ep := range []struct {
		slot  Slot
		field string
	}{{rc.Src, queryir.FieldSrc}, {rc.Dst, queryir.FieldDst}} {
		if ep.slot.Named() && f.has(col(ep.slot.Binding.Column, queryir.FieldID)) {
			on = append(on, queryir.ColumnEquals{
				Left:  col(ep.slot.Binding.Column, queryir.FieldID),
				Right: col(alias, ep.field),
			})
		}
	}
	f = f.join(scan, on)

	// Newly named endpoints join the vertex relation. A self loop binds both
	// endpoints with one scan.
	for _, ep := range []struct {
		slot  Slot
		field string
	}{{rc.Src, queryir.FieldSrc}, {rc.Dst, queryir.FieldDst}} {
		v := ep.slot.Binding
		if !ep.slot.Named() || f.has(col(v.Column, queryir.FieldID)) {
			continue
		}
		vid := col(v.Column, queryir.FieldID)
		von := []queryir.ColumnEquals{{Left: col(alias, ep.field), Right: vid}}
		if ep.field == queryir.FieldSrc && rc.Dst.Binding == v {
			von = append(von, queryir.ColumnEquals{Left: col(alias, queryir.FieldDst), Right: vid})
		}
		f = f.join(vertexScan(v.Column, true), von)
	}
	return f
}

func (c *compiler) negated(f frontier, rc ResolvedClause) (frontier, error) {
	if f.plan == nil {
		return f, &CompileError{
			Code:    ErrCodeInvalidPlan,
			Message: fmt.Sprintf("negated clause %d has no frontier to constrain", rc.Index+1),
		}
	}

	alias := rc.EdgeRef.Binding.Column
	scan := queryir.Scan{Relation: queryir.Edges, Columns: []queryir.ScanColumn{
		{Field: queryir.FieldSrc, As: col(alias, queryir.FieldSrc)},
		{Field: queryir.FieldDst, As: col(alias, queryir.FieldDst)},
	}}

	var on []queryir.ColumnEquals
	for _, ep := range []struct {
		slot  Slot
		field string
	}{{rc.Src, queryir.FieldSrc}, {rc.Dst, queryir.FieldDst}} {
		if !ep.slot.Named() {
			continue
		}
		vid := col(ep.slot.Binding.Column, queryir.FieldID)
		if !f.has(vid) {
			return f, &CompileError{
				Code:    ErrCodeInvalidPlan,
				Message: fmt.Sprintf("negated clause %d refers to %q which is not in the frontier", rc.Index+1, ep.slot.Binding.Name),
			}
		}
		on = append(on, queryir.ColumnEquals{Left: vid, Right: col(alias, ep.field)})
	}

	return frontier{
		plan:    queryir.AntiJoin{Left: f.plan, Right: scan, On: on},
		columns: f.columns,
	}, nil
}
