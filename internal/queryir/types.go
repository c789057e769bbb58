package queryir

// Plan is a logical plan node.
//
// This is a sealed interface - only types in this package implement it.
type Plan interface {
	planNode() // Marker method - seals interface to this package
}

// Relation names one of the two base relations of a graph.
type Relation string

const (
	Vertices Relation = "vertices"
	Edges    Relation = "edges"
)

// Scan fields.
const (
	FieldID  = "id"  // vertex id
	FieldRow = "row" // full row bundle (vertices and edges)
	FieldRID = "rid" // edge row identity
	FieldSrc = "src" // edge source id
	FieldDst = "dst" // edge destination id
)

// Fields returns the fields a scan of r may read, in canonical order.
func (r Relation) Fields() []string {
	switch r {
	case Vertices:
		return []string{FieldID, FieldRow}
	case Edges:
		return []string{FieldRID, FieldSrc, FieldDst, FieldRow}
	default:
		return nil
	}
}

// HasField reports whether a scan of r can read field.
func (r Relation) HasField(field string) bool {
	for _, f := range r.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// ScanColumn reads Field from the base relation under the name As.
type ScanColumn struct {
	Field string
	As    string
}

// Scan reads a base relation.
//
//	SELECT <field> AS <as>, ... FROM <relation>
type Scan struct {
	Relation Relation
	Columns  []ScanColumn
}

func (Scan) planNode() {}

// ColumnEquals is an equality between a column of the left input (Left) and
// a column of the right input (Right). Null never equals anything.
type ColumnEquals struct {
	Left  string
	Right string
}

// Join is an inner join. An empty On list is a cross join.
//
// Output columns are the left columns followed by the right columns.
type Join struct {
	Left  Plan
	Right Plan
	On    []ColumnEquals
}

func (Join) planNode() {}

// AntiJoin keeps the left rows for which no right row satisfies On.
// An empty On list removes every left row when the right input is
// non-empty. Output columns are the left columns.
type AntiJoin struct {
	Left  Plan
	Right Plan
	On    []ColumnEquals
}

func (AntiJoin) planNode() {}

// ProjectColumn emits column Source under the name As.
type ProjectColumn struct {
	Source string
	As     string
}

// Project narrows and renames the columns of Child. A Project with no
// columns keeps the row count of Child and produces zero columns.
type Project struct {
	Child   Plan
	Columns []ProjectColumn
}

func (Project) planNode() {}

// Empty produces zero rows and zero columns regardless of the graph.
type Empty struct{}

func (Empty) planNode() {}
