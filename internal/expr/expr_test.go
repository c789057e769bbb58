package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/ir"
)

type mapRow map[string]ir.IRValue

func (m mapRow) Lookup(c string) (ir.IRValue, bool) {
	v, ok := m[c]
	return v, ok
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Expr
	}{
		{
			name:     "simple equals",
			input:    "name = 'alice'",
			expected: Eq(Col("name"), Lit(ir.IRString("alice"))),
		},
		{
			name:     "double equals and double quotes",
			input:    `name == "alice"`,
			expected: Eq(Col("name"), Lit(ir.IRString("alice"))),
		},
		{
			name:     "negative integer",
			input:    "balance > -100",
			expected: Gt(Col("balance"), Lit(ir.IRInt(-100))),
		},
		{
			name:     "sql not equals",
			input:    "a <> 1",
			expected: Ne(Col("a"), Lit(ir.IRInt(1))),
		},
		{
			name:  "and binds tighter than or",
			input: "a = 1 OR b = 2 AND c = 3",
			expected: AnyOf(
				Eq(Col("a"), Lit(ir.IRInt(1))),
				AllOf(Eq(Col("b"), Lit(ir.IRInt(2))), Eq(Col("c"), Lit(ir.IRInt(3)))),
			),
		},
		{
			name:  "parentheses and symbolic operators",
			input: "(a = 1 || b = 2) && !active",
			expected: AllOf(
				AnyOf(Eq(Col("a"), Lit(ir.IRInt(1))), Eq(Col("b"), Lit(ir.IRInt(2)))),
				Negate(Col("active")),
			),
		},
		{
			name:     "keywords are case insensitive",
			input:    "not flag and x = TRUE",
			expected: AllOf(Negate(Col("flag")), Eq(Col("x"), Lit(ir.IRBool(true)))),
		},
		{
			name:     "quoted column and escaped string",
			input:    "`first name` = 'O''Brien'",
			expected: Eq(Col("first name"), Lit(ir.IRString("O'Brien"))),
		},
		{
			name:     "null literal",
			input:    "x != null",
			expected: Ne(Col("x"), Lit(ir.IRNull{})),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"", 0},
		{"a =", 3},
		{"(a = 1", 6},
		{"a = 'open", 4},
		{"a = 1.5", 4},
		{"a & b", 2},
		{"a = 1 b", 6},
		{"a # 1", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, IsPredicateError(err))

			var pe *PredicateError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ErrCodeSyntax, pe.Code)
			assert.Equal(t, tt.pos, pe.Pos)
			assert.Equal(t, tt.input, pe.Input)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	exprs := []Expr{
		AllOf(Gt(Col("age"), Lit(ir.IRInt(30))), Negate(Eq(Col("name"), Lit(ir.IRString("it's"))))),
		AnyOf(Col("active"), AllOf(Le(Col("a"), Col("b")), Ne(Col("c"), Lit(ir.IRNull{})))),
		Eq(Col("select"), Lit(ir.IRBool(false))),
		Eq(Col("two words"), Lit(ir.IRInt(-3))),
	}

	for _, e := range exprs {
		t.Run(e.String(), func(t *testing.T) {
			parsed, err := Parse(e.String())
			require.NoError(t, err)
			assert.Equal(t, e, parsed)
		})
	}
}

func TestMatches(t *testing.T) {
	row := mapRow{
		"age":    ir.IRInt(34),
		"name":   ir.IRString("alice"),
		"active": ir.IRBool(true),
		"note":   ir.IRNull{},
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"age > 30", true},
		{"age >= 34 AND age <= 34", true},
		{"age < 30", false},
		{"name = 'alice'", true},
		{"name != 'alice'", false},
		{"active", true},
		{"NOT active", false},
		{"note = 'x'", false},
		{"NOT (note = 'x')", false},
		{"note = 'x' OR active", true},
		{"note = 'x' AND active", false},
		{"NOT (note = 'x' AND age < 0)", true},
		{"note", false},
		{"age = '34'", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			got, err := Matches(e, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesTypeErrors(t *testing.T) {
	row := mapRow{"age": ir.IRInt(34), "name": ir.IRString("alice")}

	for _, input := range []string{"age > 'x'", "name", "age AND name = 'a'"} {
		t.Run(input, func(t *testing.T) {
			e, err := Parse(input)
			require.NoError(t, err)
			_, err = Matches(e, row)
			require.Error(t, err)

			var pe *PredicateError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ErrCodeType, pe.Code)
		})
	}
}

func TestTypeErrorsIgnoreTermOrder(t *testing.T) {
	row := mapRow{"id": ir.IRInt(1), "name": ir.IRString("alice")}

	pairs := [][2]string{
		{"name > 3 AND id > 10", "id > 10 AND name > 3"},
		{"name > 3 OR id = 1", "id = 1 OR name > 3"},
	}
	for _, pair := range pairs {
		for _, input := range pair {
			t.Run(input, func(t *testing.T) {
				e, err := Parse(input)
				require.NoError(t, err)
				_, err = Matches(e, row)

				var pe *PredicateError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, ErrCodeType, pe.Code)
			})
		}
	}
}

func TestCheck(t *testing.T) {
	e, err := Parse("age > 1 AND city = 'x'")
	require.NoError(t, err)

	require.NoError(t, Check(e, []string{"id", "age", "city"}))

	err = Check(e, []string{"id", "age"})
	require.Error(t, err)
	var pe *PredicateError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeUnknownColumn, pe.Code)
	assert.Contains(t, pe.Message, `"city"`)

	err = Check(nil, []string{"id"})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeNilExpr, pe.Code)
}

func TestColumns(t *testing.T) {
	e := AllOf(Eq(Col("a"), Col("b")), AnyOf(Col("a"), Negate(Col("c"))))
	assert.Equal(t, []string{"a", "b", "c"}, Columns(e))
}

func TestPointerNodesEvaluate(t *testing.T) {
	e := &And{Terms: []Expr{&Comparison{Op: OpEq, Left: &ColumnRef{Name: "x"}, Right: &Literal{Value: ir.IRInt(1)}}}}
	got, err := Matches(e, mapRow{"x": ir.IRInt(1)})
	require.NoError(t, err)
	assert.True(t, got)
}
