package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the result rows to help debug the failure.
type AssertionError struct {
	Type     string     // Assertion type for categorization
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Columns  []string   // Result columns
	Rows     [][]string // Result row keys
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nRows (%s):\n", strings.Join(e.Columns, ", "))
	for i, row := range e.Rows {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, strings.Join(row, ", "))
	}
	return buf.String()
}

func failure(result *Result, typ, expected, actual string) *AssertionError {
	return &AssertionError{
		Type:     typ,
		Expected: expected,
		Actual:   actual,
		Columns:  result.Columns,
		Rows:     result.Rows,
	}
}

// assertRowCount checks the number of result rows.
func assertRowCount(result *Result, a Assertion) error {
	if len(result.Rows) == a.Count {
		return nil
	}
	return failure(result, AssertRowCount,
		fmt.Sprintf("%d row(s)", a.Count),
		fmt.Sprintf("%d row(s)", len(result.Rows)))
}

// assertRow checks whether some row matches every column key of a.Row.
// want is true for contains_row and false for excludes_row.
func assertRow(result *Result, a Assertion, want bool) error {
	cols := make([]string, 0, len(a.Row))
	for c := range a.Row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	idx := make([]int, len(cols))
	keys := make([]string, len(cols))
	for i, c := range cols {
		idx[i] = slices.Index(result.Columns, c)
		if idx[i] < 0 {
			return failure(result, a.Type, fmt.Sprintf("column %q", c), "no such column")
		}
		key, err := keyOf(a.Row[c])
		if err != nil {
			return failure(result, a.Type, fmt.Sprintf("valid key for column %q", c), err.Error())
		}
		keys[i] = key
	}

	found := slices.ContainsFunc(result.Rows, func(row []string) bool {
		for i, j := range idx {
			if row[j] != keys[i] {
				return false
			}
		}
		return true
	})
	if found == want {
		return nil
	}

	desc := formatRow(cols, keys)
	if want {
		return failure(result, a.Type, "a row matching "+desc, "not found")
	}
	return failure(result, a.Type, "no row matching "+desc, "found")
}

// formatRow creates a human-readable description of column keys.
func formatRow(cols, keys []string) string {
	parts := make([]string, len(cols))
	for i := range cols {
		parts[i] = cols[i] + "=" + keys[i]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRowCount:
			err = assertRowCount(result, a)
		case AssertContainsRow:
			err = assertRow(result, a, true)
		case AssertExcludesRow:
			err = assertRow(result, a, false)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}
	return errs
}
