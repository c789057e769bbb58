package compiler

import (
	"fmt"

	"github.com/roach88/motif/internal/pattern"
)

// Kind is the role a binding plays in a pattern.
type Kind int

const (
	KindVertex Kind = iota
	KindEdge
)

func (k Kind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "vertex"
}

// Binding is the resolved identity of one pattern element.
type Binding struct {
	// Name is the user-supplied name, or pattern.Anonymous.
	Name pattern.Name
	// Column is the canonical column prefix used in plans. Named elements
	// use their name; anonymous ones get "#<n>", which no identifier can
	// spell.
	Column  string
	Kind    Kind
	Visible bool
	// Rank is the first-appearance order over all bindings.
	Rank int
}

// Slot is one name position of a clause after resolution.
type Slot struct {
	Binding *Binding
	// First is set on the slot that introduced Binding.
	First bool
}

// Named reports whether the slot carries a user name.
func (s Slot) Named() bool { return !s.Binding.Name.IsAnonymous() }

// ResolvedClause is a clause with every name slot bound.
type ResolvedClause struct {
	Clause  pattern.Clause
	Index   int
	Edge    bool // edge clause; otherwise a vertex clause
	Negated bool

	Vertex Slot // vertex clauses only

	Src     Slot // edge clauses only
	EdgeRef Slot
	Dst     Slot
}

// Resolution is the output of Resolve.
type Resolution struct {
	Clauses []ResolvedClause
	// Bindings holds every binding in first-appearance order.
	Bindings []*Binding
	// Output holds the visible bindings in output column order.
	Output []*Binding

	generated int
}

// Generated returns how many anonymous names were generated.
func (r *Resolution) Generated() int { return r.generated }

// Columns returns the output column names.
func (r *Resolution) Columns() []string {
	cols := make([]string, len(r.Output))
	for i, b := range r.Output {
		cols[i] = string(b.Name)
	}
	return cols
}

// Resolve binds the name slots of clauses left to right. Edge clauses are
// scanned as (src, edge, dst). Repeated names reuse their first binding; each
// anonymous slot gets a fresh invisible binding.
func Resolve(clauses []pattern.Clause) (*Resolution, error) {
	r := &resolver{
		res:   &Resolution{Clauses: make([]ResolvedClause, 0, len(clauses))},
		named: make(map[pattern.Name]*Binding),
	}
	for i, c := range clauses {
		rc, err := r.clause(i, c)
		if err != nil {
			return nil, err
		}
		r.res.Clauses = append(r.res.Clauses, rc)
	}
	return r.res, nil
}

type resolver struct {
	res      *Resolution
	named    map[pattern.Name]*Binding
	positive bool // a positive clause has been seen
}

func (r *resolver) clause(index int, c pattern.Clause) (ResolvedClause, error) {
	switch p := c.(type) {
	case *pattern.VertexClause:
		c = *p
	case *pattern.EdgeClause:
		c = *p
	}
	rc := ResolvedClause{Clause: c, Index: index}

	switch clause := c.(type) {
	case pattern.VertexClause:
		slot, err := r.bind(index, c, clause.Name, KindVertex)
		if err != nil {
			return rc, err
		}
		rc.Vertex = slot
		r.positive = true
		return rc, nil

	case pattern.EdgeClause:
		rc.Edge = true
		rc.Negated = clause.Negated
		if clause.Negated {
			if err := r.checkNegated(index, clause); err != nil {
				return rc, err
			}
		}

		var err error
		if rc.Src, err = r.bind(index, c, clause.Src, KindVertex); err != nil {
			return rc, err
		}
		if rc.EdgeRef, err = r.bind(index, c, clause.Edge, KindEdge); err != nil {
			return rc, err
		}
		if rc.Dst, err = r.bind(index, c, clause.Dst, KindVertex); err != nil {
			return rc, err
		}
		if !clause.Negated {
			r.positive = true
		}
		return rc, nil

	default:
		return rc, &CompileError{
			Code:    ErrCodeInvalidPlan,
			Message: fmt.Sprintf("unknown clause type %T", c),
		}
	}
}

// checkNegated enforces that a negated clause only constrains elements
// bound by earlier clauses.
func (r *resolver) checkNegated(index int, c pattern.EdgeClause) error {
	if !r.positive {
		return &BindingError{
			Code:    ErrCodeUnanchoredNegation,
			Clause:  c.String(),
			Index:   index,
			Message: "negated clause must follow a positive clause that binds what it constrains",
		}
	}
	if !c.Edge.IsAnonymous() {
		return &BindingError{
			Code:    ErrCodeNamedNegatedEdge,
			Name:    string(c.Edge),
			Clause:  c.String(),
			Index:   index,
			Message: "the edge of a negated clause cannot be named",
		}
	}
	for _, n := range []pattern.Name{c.Src, c.Dst} {
		if n.IsAnonymous() {
			continue
		}
		if _, ok := r.named[n]; !ok {
			return &BindingError{
				Code:    ErrCodeUnboundNegation,
				Name:    string(n),
				Clause:  c.String(),
				Index:   index,
				Message: "negation refers to unbound name",
			}
		}
	}
	return nil
}

func (r *resolver) bind(index int, c pattern.Clause, name pattern.Name, kind Kind) (Slot, error) {
	if name.IsAnonymous() {
		r.res.generated++
		b := &Binding{
			Name:   pattern.Anonymous,
			Column: fmt.Sprintf("#%d", r.res.generated),
			Kind:   kind,
			Rank:   len(r.res.Bindings),
		}
		r.res.Bindings = append(r.res.Bindings, b)
		return Slot{Binding: b, First: true}, nil
	}

	if b, ok := r.named[name]; ok {
		if b.Kind != kind {
			return Slot{}, &BindingError{
				Code:    ErrCodeRoleConflict,
				Name:    string(name),
				Clause:  c.String(),
				Index:   index,
				Message: fmt.Sprintf("already bound as a %s, used here as a %s", b.Kind, kind),
			}
		}
		return Slot{Binding: b}, nil
	}

	b := &Binding{
		Name:    name,
		Column:  string(name),
		Kind:    kind,
		Visible: true,
		Rank:    len(r.res.Bindings),
	}
	r.named[name] = b
	r.res.Bindings = append(r.res.Bindings, b)
	r.res.Output = append(r.res.Output, b)
	return Slot{Binding: b, First: true}, nil
}
