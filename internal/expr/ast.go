package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/motif/internal/ir"
)

// Expr is a boolean-valued predicate over the columns of one relation.
//
// This is a sealed interface - only types in this package implement it,
// so evaluators can switch exhaustively. Text predicates are parsed into
// the same nodes, which is what makes text and structured predicates
// interchangeable.
type Expr interface {
	exprNode()
	// String renders the expression in the text syntax accepted by Parse.
	String() string
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// ColumnRef reads a column of the current row.
type ColumnRef struct {
	Name string
}

func (ColumnRef) exprNode() {}

func (c ColumnRef) String() string {
	if isIdent(c.Name) && !isKeyword(c.Name) {
		return c.Name
	}
	return "`" + strings.ReplaceAll(c.Name, "`", "``") + "`"
}

// Literal is a constant value.
type Literal struct {
	Value ir.IRValue
}

func (Literal) exprNode() {}

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case ir.IRString:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	default:
		return ir.String(v)
	}
}

// Comparison compares two operands with SQL semantics: any null operand
// makes the result unknown.
type Comparison struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (Comparison) exprNode() {}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", operandString(c.Left), c.Op, operandString(c.Right))
}

// And is true when every term is true. An empty And is true.
type And struct {
	Terms []Expr
}

func (And) exprNode() {}

func (a And) String() string {
	if len(a.Terms) == 0 {
		return "true"
	}
	return joinTerms(a.Terms, " AND ")
}

// Or is true when any term is true. An empty Or is false.
type Or struct {
	Terms []Expr
}

func (Or) exprNode() {}

func (o Or) String() string {
	if len(o.Terms) == 0 {
		return "false"
	}
	return joinTerms(o.Terms, " OR ")
}

// Not negates its operand; unknown stays unknown.
type Not struct {
	Expr Expr
}

func (Not) exprNode() {}

func (n Not) String() string {
	return "NOT " + operandString(n.Expr)
}

func joinTerms(terms []Expr, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = operandString(t)
	}
	return strings.Join(parts, sep)
}

// operandString parenthesizes composite operands so String output
// re-parses to the same tree.
func operandString(e Expr) string {
	switch e.(type) {
	case ColumnRef, Literal, *ColumnRef, *Literal:
		return e.String()
	}
	return "(" + e.String() + ")"
}

// Col references a column by name.
func Col(name string) ColumnRef { return ColumnRef{Name: name} }

// Lit wraps a value as a literal.
func Lit(v ir.IRValue) Literal { return Literal{Value: v} }

// Eq builds left = right.
func Eq(left, right Expr) Comparison { return Comparison{Op: OpEq, Left: left, Right: right} }

// Ne builds left != right.
func Ne(left, right Expr) Comparison { return Comparison{Op: OpNe, Left: left, Right: right} }

// Lt builds left < right.
func Lt(left, right Expr) Comparison { return Comparison{Op: OpLt, Left: left, Right: right} }

// Le builds left <= right.
func Le(left, right Expr) Comparison { return Comparison{Op: OpLe, Left: left, Right: right} }

// Gt builds left > right.
func Gt(left, right Expr) Comparison { return Comparison{Op: OpGt, Left: left, Right: right} }

// Ge builds left >= right.
func Ge(left, right Expr) Comparison { return Comparison{Op: OpGe, Left: left, Right: right} }

// AllOf builds a conjunction.
func AllOf(terms ...Expr) And { return And{Terms: terms} }

// AnyOf builds a disjunction.
func AnyOf(terms ...Expr) Or { return Or{Terms: terms} }

// Negate builds NOT e.
func Negate(e Expr) Not { return Not{Expr: e} }

// Columns returns the distinct column names referenced by e, in first-use order.
func Columns(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	walk(e, func(n Expr) {
		var name string
		switch c := n.(type) {
		case ColumnRef:
			name = c.Name
		case *ColumnRef:
			name = c.Name
		default:
			return
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

func walk(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case Comparison:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case *Comparison:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case And:
		for _, t := range n.Terms {
			walk(t, visit)
		}
	case *And:
		for _, t := range n.Terms {
			walk(t, visit)
		}
	case Or:
		for _, t := range n.Terms {
			walk(t, visit)
		}
	case *Or:
		for _, t := range n.Terms {
			walk(t, visit)
		}
	case Not:
		walk(n.Expr, visit)
	case *Not:
		walk(n.Expr, visit)
	}
}
