package expr

import (
	"fmt"

	"github.com/roach88/motif/internal/ir"
)

// Row gives an evaluator access to the current row's columns.
type Row interface {
	Lookup(column string) (ir.IRValue, bool)
}

// truth is a SQL three-valued logic result.
type truth int8

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

// Check verifies e against a relation's column list before any row is
// evaluated. Unknown columns are reported as a PredicateError.
func Check(e Expr, columns []string) error {
	if e == nil {
		return &PredicateError{Code: ErrCodeNilExpr, Message: "predicate is nil", Pos: -1}
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, name := range Columns(e) {
		if !known[name] {
			return &PredicateError{
				Code:    ErrCodeUnknownColumn,
				Message: fmt.Sprintf("unknown column %q (have %v)", name, columns),
				Input:   e.String(),
				Pos:     -1,
			}
		}
	}
	return nil
}

// Matches evaluates e against row and reports whether it is true.
// False and unknown both reject the row, as in a SQL WHERE clause.
func Matches(e Expr, row Row) (bool, error) {
	t, err := evalBool(e, row)
	if err != nil {
		return false, err
	}
	return t == truthTrue, nil
}

func evalBool(e Expr, row Row) (truth, error) {
	switch n := e.(type) {
	case Comparison:
		return evalComparison(n, row)
	case *Comparison:
		return evalComparison(*n, row)
	case And:
		return evalAnd(n.Terms, row)
	case *And:
		return evalAnd(n.Terms, row)
	case Or:
		return evalOr(n.Terms, row)
	case *Or:
		return evalOr(n.Terms, row)
	case Not:
		return evalNot(n.Expr, row)
	case *Not:
		return evalNot(n.Expr, row)
	case ColumnRef, *ColumnRef, Literal, *Literal:
		v, err := evalValue(e, row)
		if err != nil {
			return truthUnknown, err
		}
		return asTruth(e, v)
	case nil:
		return truthUnknown, &PredicateError{Code: ErrCodeNilExpr, Message: "predicate is nil", Pos: -1}
	default:
		return truthUnknown, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// evalAnd and evalOr evaluate every term before combining, so a type error
// in any term fails the row whatever the term order.
func evalAnd(terms []Expr, row Row) (truth, error) {
	result := truthTrue
	for _, t := range terms {
		v, err := evalBool(t, row)
		if err != nil {
			return truthUnknown, err
		}
		switch {
		case v == truthFalse:
			result = truthFalse
		case v == truthUnknown && result == truthTrue:
			result = truthUnknown
		}
	}
	return result, nil
}

func evalOr(terms []Expr, row Row) (truth, error) {
	result := truthFalse
	for _, t := range terms {
		v, err := evalBool(t, row)
		if err != nil {
			return truthUnknown, err
		}
		switch {
		case v == truthTrue:
			result = truthTrue
		case v == truthUnknown && result == truthFalse:
			result = truthUnknown
		}
	}
	return result, nil
}

func evalNot(inner Expr, row Row) (truth, error) {
	v, err := evalBool(inner, row)
	if err != nil {
		return truthUnknown, err
	}
	switch v {
	case truthTrue:
		return truthFalse, nil
	case truthFalse:
		return truthTrue, nil
	}
	return truthUnknown, nil
}

func asTruth(e Expr, v ir.IRValue) (truth, error) {
	switch b := v.(type) {
	case nil, ir.IRNull:
		return truthUnknown, nil
	case ir.IRBool:
		if b {
			return truthTrue, nil
		}
		return truthFalse, nil
	default:
		return truthUnknown, &PredicateError{
			Code:    ErrCodeType,
			Message: fmt.Sprintf("%s is %s, not a boolean", e.String(), ir.KindOf(v)),
			Input:   e.String(),
			Pos:     -1,
		}
	}
}

func evalValue(e Expr, row Row) (ir.IRValue, error) {
	switch n := e.(type) {
	case ColumnRef:
		return lookup(n.Name, row)
	case *ColumnRef:
		return lookup(n.Name, row)
	case Literal:
		return n.Value, nil
	case *Literal:
		return n.Value, nil
	default:
		t, err := evalBool(e, row)
		if err != nil {
			return nil, err
		}
		switch t {
		case truthTrue:
			return ir.IRBool(true), nil
		case truthFalse:
			return ir.IRBool(false), nil
		}
		return ir.IRNull{}, nil
	}
}

func lookup(name string, row Row) (ir.IRValue, error) {
	v, ok := row.Lookup(name)
	if !ok {
		return nil, &PredicateError{
			Code:    ErrCodeUnknownColumn,
			Message: fmt.Sprintf("unknown column %q", name),
			Input:   name,
			Pos:     -1,
		}
	}
	return v, nil
}

func evalComparison(c Comparison, row Row) (truth, error) {
	left, err := evalValue(c.Left, row)
	if err != nil {
		return truthUnknown, err
	}
	right, err := evalValue(c.Right, row)
	if err != nil {
		return truthUnknown, err
	}
	if ir.IsNull(left) || ir.IsNull(right) {
		return truthUnknown, nil
	}

	switch c.Op {
	case OpEq:
		return boolTruth(ir.Equal(left, right)), nil
	case OpNe:
		return boolTruth(!ir.Equal(left, right)), nil
	}

	cmp, err := ir.Compare(left, right)
	if err != nil {
		return truthUnknown, &PredicateError{
			Code:    ErrCodeType,
			Message: err.Error(),
			Input:   c.String(),
			Pos:     -1,
		}
	}
	switch c.Op {
	case OpLt:
		return boolTruth(cmp < 0), nil
	case OpLe:
		return boolTruth(cmp <= 0), nil
	case OpGt:
		return boolTruth(cmp > 0), nil
	case OpGe:
		return boolTruth(cmp >= 0), nil
	default:
		return truthUnknown, &PredicateError{
			Code:    ErrCodeType,
			Message: fmt.Sprintf("unknown operator %q", c.Op),
			Input:   c.String(),
			Pos:     -1,
		}
	}
}

func boolTruth(b bool) truth {
	if b {
		return truthTrue
	}
	return truthFalse
}
