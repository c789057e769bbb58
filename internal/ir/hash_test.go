package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowHashDeterminism(t *testing.T) {
	row := []IRValue{IRObject{"id": IRInt(1), "name": IRString("a")}, IRInt(2)}

	h1, err := RowHash(row)
	require.NoError(t, err)
	h2, err := RowHash(row)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "RowHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestRowHashIgnoresKeyOrderButNotColumnOrder(t *testing.T) {
	a := MustRowHash([]IRValue{IRObject{"x": IRInt(1), "y": IRInt(2)}})
	b := MustRowHash([]IRValue{IRObject{"y": IRInt(2), "x": IRInt(1)}})
	assert.Equal(t, a, b)

	c := MustRowHash([]IRValue{IRInt(1), IRInt(2)})
	d := MustRowHash([]IRValue{IRInt(2), IRInt(1)})
	assert.NotEqual(t, c, d)
}

func TestRowHashDistinguishesTypes(t *testing.T) {
	assert.NotEqual(t,
		MustRowHash([]IRValue{IRInt(1)}),
		MustRowHash([]IRValue{IRString("1")}))
}

func TestRelationHash(t *testing.T) {
	h1, err := RelationHash([]string{"a"}, []string{"r1", "r2"})
	require.NoError(t, err)
	h2, err := RelationHash([]string{"b"}, []string{"r1", "r2"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	empty, err := RelationHash(nil, nil)
	require.NoError(t, err)
	assert.Len(t, empty, 64)
}
