package pattern

import (
	"errors"
	"fmt"
)

// Parse error codes (E200-E299)
const (
	ErrCodeUnexpectedToken   = "E201" // token does not fit the grammar here
	ErrCodeUnmatchedBracket  = "E202" // "(" or "[" without its closing bracket
	ErrCodeReversedDirection = "E203" // "<-[...]-" or an edge without "->"
	ErrCodeNegatedVertex     = "E204" // "!" applied to a vertex clause
	ErrCodeEmptyClause       = "E205" // ";;" or a trailing ";"
	ErrCodeInvalidCharacter  = "E206" // character outside the pattern alphabet
)

// ParseError reports malformed pattern syntax. Parse errors are surfaced
// immediately and never recovered.
type ParseError struct {
	Code    string
	Message string
	// Pattern is the full input.
	Pattern string
	// Fragment is the offending substring (normally the enclosing clause).
	Fragment string
	// Pos is the byte offset where parsing failed.
	Pos int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] parse %q at offset %d: %s (in %q)", e.Code, e.Pattern, e.Pos, e.Message, e.Fragment)
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
