package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/motif/internal/ir"
	"github.com/roach88/motif/internal/queryir"
)

// Table and column names of the SQLite schema the compiled SQL runs against.
const (
	VertexTable = "vertices"
	EdgeTable   = "edges"
	AttrsColumn = "attrs"
	// PlaceholderColumn is selected by queries that produce zero columns.
	PlaceholderColumn = "_"
)

// Query is a compiled plan.
type Query struct {
	SQL string
	// Columns are the plan's output columns in order. When empty the SQL
	// still selects PlaceholderColumn, which carries no data.
	Columns []string
	// Bundles marks the columns holding a JSON encoded row bundle; the
	// others hold raw key values.
	Bundles []bool
}

// SQLCompiler compiles logical plans to a single SQLite SELECT statement.
//
// CRITICAL: ALL queries with output columns end in ORDER BY ... COLLATE
// BINARY so results are reproducible.
// Plans carry no literals, so compiled SQL has no parameters.
type SQLCompiler struct {
	aliases int
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

type column struct {
	name   string
	bundle bool
}

// Compile converts a plan to SQL. The plan is validated first.
func (c *SQLCompiler) Compile(p queryir.Plan) (*Query, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot compile nil plan")
	}
	if err := queryir.Validate(p); err != nil {
		return nil, fmt.Errorf("compile plan: %w", err)
	}
	c.aliases = 0

	outer := c.alias()
	inner, cols, err := c.compile(p)
	if err != nil {
		return nil, err
	}

	q := &Query{Columns: make([]string, len(cols)), Bundles: make([]bool, len(cols))}
	for i, col := range cols {
		q.Columns[i] = col.name
		q.Bundles[i] = col.bundle
	}
	if len(cols) == 0 {
		q.SQL = inner
		return q, nil
	}

	order := make([]string, len(cols))
	for i, col := range cols {
		order[i] = outer + "." + Quote(col.name) + " COLLATE BINARY"
	}
	q.SQL = fmt.Sprintf("SELECT %s FROM (%s) AS %s ORDER BY %s",
		selectList(outer, cols), inner, outer, strings.Join(order, ", "))
	return q, nil
}

func (c *SQLCompiler) alias() string {
	c.aliases++
	return fmt.Sprintf("q%d", c.aliases)
}

func (c *SQLCompiler) compile(p queryir.Plan) (string, []column, error) {
	switch node := queryir.Deref(p).(type) {
	case queryir.Scan:
		return compileScan(node)
	case queryir.Join:
		return c.compileJoin(node)
	case queryir.AntiJoin:
		return c.compileAntiJoin(node)
	case queryir.Project:
		return c.compileProject(node)
	case queryir.Empty:
		return fmt.Sprintf("SELECT NULL AS %s WHERE 0", Quote(PlaceholderColumn)), nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported plan node: %T", p)
	}
}

// compileScan reads base table fields under their plan aliases.
func compileScan(s queryir.Scan) (string, []column, error) {
	table, err := tableOf(s.Relation)
	if err != nil {
		return "", nil, err
	}

	parts := make([]string, len(s.Columns))
	cols := make([]column, len(s.Columns))
	for i, sc := range s.Columns {
		source := sc.Field
		if sc.Field == queryir.FieldRow {
			source = AttrsColumn
		}
		parts[i] = source + " AS " + Quote(sc.As)
		cols[i] = column{name: sc.As, bundle: sc.Field == queryir.FieldRow}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(parts, ", "), table), cols, nil
}

// compileJoin emits an inner join; an empty On list is a cross join.
func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []column, error) {
	l, r := c.alias(), c.alias()
	lsql, lcols, err := c.compile(j.Left)
	if err != nil {
		return "", nil, fmt.Errorf("compile join left: %w", err)
	}
	rsql, rcols, err := c.compile(j.Right)
	if err != nil {
		return "", nil, fmt.Errorf("compile join right: %w", err)
	}

	parts := make([]string, 0, len(lcols)+len(rcols))
	for _, col := range lcols {
		parts = append(parts, l+"."+Quote(col.name)+" AS "+Quote(col.name))
	}
	for _, col := range rcols {
		parts = append(parts, r+"."+Quote(col.name)+" AS "+Quote(col.name))
	}
	list := strings.Join(parts, ", ")
	if len(parts) == 0 {
		list = "1 AS " + Quote(PlaceholderColumn)
	}

	cols := make([]column, 0, len(parts))
	cols = append(cols, lcols...)
	cols = append(cols, rcols...)

	sql := fmt.Sprintf("SELECT %s FROM (%s) AS %s JOIN (%s) AS %s ON %s",
		list, lsql, l, rsql, r, onClause(l, r, j.On))
	return sql, cols, nil
}

// compileAntiJoin keeps left rows with no matching right row.
func (c *SQLCompiler) compileAntiJoin(a queryir.AntiJoin) (string, []column, error) {
	l, r := c.alias(), c.alias()
	lsql, lcols, err := c.compile(a.Left)
	if err != nil {
		return "", nil, fmt.Errorf("compile anti-join left: %w", err)
	}
	rsql, _, err := c.compile(a.Right)
	if err != nil {
		return "", nil, fmt.Errorf("compile anti-join right: %w", err)
	}

	exists := fmt.Sprintf("SELECT 1 FROM (%s) AS %s", rsql, r)
	if len(a.On) > 0 {
		exists += " WHERE " + onClause(l, r, a.On)
	}
	sql := fmt.Sprintf("SELECT %s FROM (%s) AS %s WHERE NOT EXISTS (%s)",
		selectList(l, lcols), lsql, l, exists)
	return sql, lcols, nil
}

func (c *SQLCompiler) compileProject(p queryir.Project) (string, []column, error) {
	q := c.alias()
	csql, ccols, err := c.compile(p.Child)
	if err != nil {
		return "", nil, fmt.Errorf("compile project: %w", err)
	}

	bundle := make(map[string]bool, len(ccols))
	for _, col := range ccols {
		bundle[col.name] = col.bundle
	}

	parts := make([]string, len(p.Columns))
	cols := make([]column, len(p.Columns))
	for i, pc := range p.Columns {
		parts[i] = q + "." + Quote(pc.Source) + " AS " + Quote(pc.As)
		cols[i] = column{name: pc.As, bundle: bundle[pc.Source]}
	}
	list := strings.Join(parts, ", ")
	if len(parts) == 0 {
		list = "1 AS " + Quote(PlaceholderColumn)
	}
	return fmt.Sprintf("SELECT %s FROM (%s) AS %s", list, csql, q), cols, nil
}

func selectList(alias string, cols []column) string {
	if len(cols) == 0 {
		return "1 AS " + Quote(PlaceholderColumn)
	}
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = alias + "." + Quote(col.name) + " AS " + Quote(col.name)
	}
	return strings.Join(parts, ", ")
}

// onClause renders equalities; "1 = 1" stands for a cross join.
func onClause(l, r string, on []queryir.ColumnEquals) string {
	if len(on) == 0 {
		return "1 = 1"
	}
	parts := make([]string, len(on))
	for i, eq := range on {
		parts[i] = l + "." + Quote(eq.Left) + " = " + r + "." + Quote(eq.Right)
	}
	return strings.Join(parts, " AND ")
}

func tableOf(r queryir.Relation) (string, error) {
	switch r {
	case queryir.Vertices:
		return VertexTable, nil
	case queryir.Edges:
		return EdgeTable, nil
	default:
		return "", fmt.Errorf("unknown relation %q", r)
	}
}

// Quote renders an SQL identifier. Plan column names contain "." and "#",
// so every generated identifier is quoted.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// ParamOf converts a key value to a Go native SQL parameter. Only the kinds
// allowed in key columns convert.
func ParamOf(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRNull:
		return nil, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%s value cannot be used as a key parameter", ir.KindOf(v))
	}
}
