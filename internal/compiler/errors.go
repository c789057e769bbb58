package compiler

import (
	"errors"
	"fmt"
)

// Binding error codes (E300-E389)
const (
	ErrCodeRoleConflict       = "E301" // name used both as a vertex and as an edge
	ErrCodeUnboundNegation    = "E302" // negated clause introduces a new name
	ErrCodeNamedNegatedEdge   = "E303" // negated clause names its edge
	ErrCodeUnanchoredNegation = "E304" // negated clause with no positive clause before it
)

// Compile error codes (E390-E399)
const (
	ErrCodeInvalidPlan   = "E391" // compiled plan fails column-flow validation
	ErrCodeUnknownOutput = "E392" // output binding missing from the frontier
)

// BindingError reports a name used inconsistently across clauses or a
// negated clause that does not only constrain bound elements. It is raised
// before any relation is touched.
type BindingError struct {
	Code    string
	Name    string // offending name, empty when the clause as a whole is at fault
	Clause  string // offending clause as written
	Index   int    // clause position in the pattern, 0-based
	Message string
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("[%s] clause %d %s: name %q: %s", e.Code, e.Index+1, e.Clause, e.Name, e.Message)
	}
	return fmt.Sprintf("[%s] clause %d %s: %s", e.Code, e.Index+1, e.Clause, e.Message)
}

// CompileError signals an internal inconsistency between the resolver and
// the plan compiler. Reaching one is a programming defect, not a user error.
type CompileError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// IsBindingError reports whether err wraps a BindingError.
func IsBindingError(err error) bool {
	var be *BindingError
	return errors.As(err, &be)
}

// IsCompileError reports whether err wraps a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
