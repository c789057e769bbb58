package expr

import (
	"errors"
	"fmt"
)

// Predicate error codes (E400-E499)
const (
	ErrCodeSyntax        = "E401" // malformed predicate text
	ErrCodeUnknownColumn = "E402" // column not present in the relation
	ErrCodeType          = "E403" // operands cannot be compared or used as booleans
	ErrCodeNilExpr       = "E404" // nil predicate
)

// PredicateError reports a malformed or ill-typed filter predicate.
// It is raised before any row is kept, so filters never return partial results.
type PredicateError struct {
	Code    string
	Message string
	// Input is the offending predicate text (or its rendering for
	// structured predicates).
	Input string
	// Pos is the byte offset of a syntax error in Input, -1 otherwise.
	Pos int
}

// Error implements the error interface.
func (e *PredicateError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("[%s] predicate %q at offset %d: %s", e.Code, e.Input, e.Pos, e.Message)
	}
	return fmt.Sprintf("[%s] predicate %q: %s", e.Code, e.Input, e.Message)
}

// IsPredicateError reports whether err wraps a PredicateError.
func IsPredicateError(err error) bool {
	var pe *PredicateError
	return errors.As(err, &pe)
}

func syntaxError(input string, pos int, format string, args ...any) *PredicateError {
	return &PredicateError{
		Code:    ErrCodeSyntax,
		Message: fmt.Sprintf(format, args...),
		Input:   input,
		Pos:     pos,
	}
}
