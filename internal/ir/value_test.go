package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNull, KindOf(nil))
	assert.Equal(t, KindNull, KindOf(IRNull{}))
	assert.Equal(t, KindString, KindOf(IRString("a")))
	assert.Equal(t, KindInt, KindOf(IRInt(1)))
	assert.Equal(t, KindBool, KindOf(IRBool(true)))
	assert.Equal(t, KindArray, KindOf(IRArray{}))
	assert.Equal(t, KindObject, KindOf(IRObject{}))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want bool
	}{
		{"same int", IRInt(1), IRInt(1), true},
		{"different int", IRInt(1), IRInt(2), false},
		{"int vs string", IRInt(1), IRString("1"), false},
		{"null vs null", IRNull{}, nil, true},
		{"nested object", IRObject{"a": IRArray{IRInt(1)}}, IRObject{"a": IRArray{IRInt(1)}}, true},
		{"object extra key", IRObject{"a": IRInt(1)}, IRObject{"a": IRInt(1), "b": IRInt(2)}, false},
		{"array order", IRArray{IRInt(1), IRInt(2)}, IRArray{IRInt(2), IRInt(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Key(tt.a) == Key(tt.b), "Key must agree with Equal")
		})
	}
}

func TestCompare(t *testing.T) {
	c, err := Compare(IRInt(1), IRInt(2))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(IRString("b"), IRString("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare(IRBool(false), IRBool(true))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = Compare(IRInt(1), IRString("1"))
	assert.Error(t, err)

	_, err = Compare(IRNull{}, IRNull{})
	assert.Error(t, err)
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"name":  "alice",
		"age":   30,
		"tags":  []any{"a", int64(2)},
		"score": json.Number("7"),
		"gone":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"name":  IRString("alice"),
		"age":   IRInt(30),
		"tags":  IRArray{IRString("a"), IRInt(2)},
		"score": IRInt(7),
		"gone":  IRNull{},
	}, v)

	_, err = FromGo(1.5)
	assert.Error(t, err)

	_, err = FromGo(json.Number("1.5"))
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"id":1,"name":"a","ok":true,"x":null,"l":[1,"b"]}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"id":   IRInt(1),
		"name": IRString("a"),
		"ok":   IRBool(true),
		"x":    IRNull{},
		"l":    IRArray{IRInt(1), IRString("b")},
	}, v)

	_, err = UnmarshalIRValue([]byte(`2.5`))
	assert.Error(t, err)
}

func TestMarshalJSONSortedKeys(t *testing.T) {
	b, err := json.Marshal(IRObject{"b": IRInt(1), "a": IRNull{}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":1}`, string(b))
}

func TestString(t *testing.T) {
	assert.Equal(t, `"x"`, String(IRString("x")))
	assert.Equal(t, `null`, String(nil))
	assert.Equal(t, `[1,true]`, String(IRArray{IRInt(1), IRBool(true)}))
}
