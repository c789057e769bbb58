package queryir

import (
	"fmt"
	"strings"
)

// Explain renders a plan as an indented tree, one node per line, children
// indented two spaces below their parent (left input first).
func Explain(p Plan) string {
	var b strings.Builder
	explain(&b, p, 0)
	return b.String()
}

// Deref returns the value form of a pointer node, so callers can switch on
// value types only.
func Deref(p Plan) Plan {
	switch node := p.(type) {
	case *Scan:
		return *node
	case *Join:
		return *node
	case *AntiJoin:
		return *node
	case *Project:
		return *node
	case *Empty:
		return *node
	default:
		return p
	}
}

func explain(b *strings.Builder, p Plan, depth int) {
	b.WriteString(strings.Repeat("  ", depth))

	switch node := Deref(p).(type) {
	case Scan:
		cols := make([]string, len(node.Columns))
		for i, c := range node.Columns {
			cols[i] = c.Field + " AS " + c.As
		}
		fmt.Fprintf(b, "Scan %s (%s)\n", node.Relation, strings.Join(cols, ", "))
	case Join:
		fmt.Fprintf(b, "Join ON %s\n", formatOn(node.On))
		explain(b, node.Left, depth+1)
		explain(b, node.Right, depth+1)
	case AntiJoin:
		fmt.Fprintf(b, "AntiJoin ON %s\n", formatOn(node.On))
		explain(b, node.Left, depth+1)
		explain(b, node.Right, depth+1)
	case Project:
		cols := make([]string, len(node.Columns))
		for i, c := range node.Columns {
			cols[i] = c.Source + " AS " + c.As
		}
		fmt.Fprintf(b, "Project (%s)\n", strings.Join(cols, ", "))
		explain(b, node.Child, depth+1)
	case Empty:
		b.WriteString("Empty\n")
	case nil:
		b.WriteString("<nil>\n")
	default:
		fmt.Fprintf(b, "<%T>\n", p)
	}
}

func formatOn(on []ColumnEquals) string {
	if len(on) == 0 {
		return "true"
	}
	parts := make([]string, len(on))
	for i, eq := range on {
		parts[i] = eq.Left + " = " + eq.Right
	}
	return strings.Join(parts, " AND ")
}
