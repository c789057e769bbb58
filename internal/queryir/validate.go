package queryir

import (
	"errors"
	"fmt"
)

// PlanError reports a malformed plan: a column used where it is not
// produced, a duplicate column name, or an unknown node or field.
type PlanError struct {
	Node    string // node kind where the defect was found
	Message string
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Node, e.Message)
}

// IsPlanError reports whether err wraps a PlanError.
func IsPlanError(err error) bool {
	var pe *PlanError
	return errors.As(err, &pe)
}

func planErrorf(node, format string, args ...any) *PlanError {
	return &PlanError{Node: node, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the column flow of a plan.
//
// Validate is a pure function with no side effects.
func Validate(p Plan) error {
	_, err := Columns(p)
	return err
}

// Columns returns the ordered output columns of p, validating the whole
// subtree on the way.
func Columns(p Plan) ([]string, error) {
	if p == nil {
		return nil, planErrorf("plan", "nil node")
	}

	switch node := Deref(p).(type) {
	case Scan:
		return scanColumns(node)
	case Join:
		return joinColumns("join", node.Left, node.Right, node.On, true)
	case AntiJoin:
		return joinColumns("anti-join", node.Left, node.Right, node.On, false)
	case Project:
		return projectColumns(node)
	case Empty:
		return []string{}, nil
	default:
		return nil, planErrorf("plan", "unknown node type %T", p)
	}
}

func scanColumns(s Scan) ([]string, error) {
	if s.Relation != Vertices && s.Relation != Edges {
		return nil, planErrorf("scan", "unknown relation %q", s.Relation)
	}
	if len(s.Columns) == 0 {
		return nil, planErrorf("scan", "scan of %s reads no fields", s.Relation)
	}
	cols := make([]string, 0, len(s.Columns))
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if !s.Relation.HasField(c.Field) {
			return nil, planErrorf("scan", "%s has no field %q", s.Relation, c.Field)
		}
		if c.As == "" {
			return nil, planErrorf("scan", "field %q of %s has no alias", c.Field, s.Relation)
		}
		if seen[c.As] {
			return nil, planErrorf("scan", "duplicate column %q", c.As)
		}
		seen[c.As] = true
		cols = append(cols, c.As)
	}
	return cols, nil
}

func joinColumns(node string, left, right Plan, on []ColumnEquals, concat bool) ([]string, error) {
	lcols, err := Columns(left)
	if err != nil {
		return nil, err
	}
	rcols, err := Columns(right)
	if err != nil {
		return nil, err
	}

	lset := toSet(lcols)
	for _, c := range rcols {
		if lset[c] {
			return nil, planErrorf(node, "column %q produced by both inputs", c)
		}
	}

	rset := toSet(rcols)
	for _, eq := range on {
		if !lset[eq.Left] {
			return nil, planErrorf(node, "left input has no column %q", eq.Left)
		}
		if !rset[eq.Right] {
			return nil, planErrorf(node, "right input has no column %q", eq.Right)
		}
	}

	if !concat {
		return lcols, nil
	}
	out := make([]string, 0, len(lcols)+len(rcols))
	out = append(out, lcols...)
	return append(out, rcols...), nil
}

func projectColumns(p Project) ([]string, error) {
	child, err := Columns(p.Child)
	if err != nil {
		return nil, err
	}
	have := toSet(child)

	out := make([]string, 0, len(p.Columns))
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		if !have[c.Source] {
			return nil, planErrorf("project", "input has no column %q", c.Source)
		}
		if c.As == "" {
			return nil, planErrorf("project", "column %q has no output name", c.Source)
		}
		if seen[c.As] {
			return nil, planErrorf("project", "duplicate output column %q", c.As)
		}
		seen[c.As] = true
		out = append(out, c.As)
	}
	return out, nil
}

func toSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}
