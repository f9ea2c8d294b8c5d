package num

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_RejectsNonFinite(t *testing.T) {
	assert.False(t, Of(math.NaN()).Present())
	assert.False(t, Of(math.Inf(1)).Present())
	assert.False(t, Of(math.Inf(-1)).Present())
	assert.True(t, Of(0).Present())
}

func TestZeroValueIsMissing(t *testing.T) {
	var v Value
	assert.False(t, v.Present())
	assert.Equal(t, "", v.String())
	assert.Equal(t, 7.0, v.Or(7))
}

func TestDiv(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want Value
	}{
		{"plain", Of(10), Of(4), Of(2.5)},
		{"zero denominator", Of(10), Of(0), Missing()},
		{"missing denominator", Of(10), Missing(), Missing()},
		{"missing numerator", Missing(), Of(3), Missing()},
		{"negative", Of(-9), Of(3), Of(-3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Div(tc.a, tc.b))
		})
	}
}

func TestAddSubFirst(t *testing.T) {
	assert.Equal(t, Of(5), Add(Of(2), Of(3)))
	assert.False(t, Add(Of(2), Missing()).Present())
	assert.Equal(t, Of(-1), Sub(Of(2), Of(3)))
	assert.False(t, Sub(Missing(), Of(3)).Present())
	assert.Equal(t, Of(4), First(Missing(), Of(4), Of(5)))
	assert.False(t, First(Missing(), Missing()).Present())
	assert.Equal(t, 2, Count([]Value{Of(1), Missing(), Of(0)}))
}

func TestParse(t *testing.T) {
	tests := map[string]Value{
		"12.5":      Of(12.5),
		" 1,234.5 ": Of(1234.5),
		"-3":        Of(-3),
		"1e3":       Of(1000),
		"":          Missing(),
		"NA":        Missing(),
		"n/a":       Missing(),
		"NaN":       Missing(),
		"None":      Missing(),
		"abc":       Missing(),
		"inf":       Missing(),
	}
	for in, want := range tests {
		assert.Equal(t, want, Parse(in), "input %q", in)
	}
}

func TestCoerce(t *testing.T) {
	f := 2.5
	var nilPtr *float64
	i64 := int64(42)

	assert.Equal(t, Of(2.5), Coerce(f))
	assert.Equal(t, Of(2.5), Coerce(&f))
	assert.Equal(t, Of(42), Coerce(&i64))
	assert.Equal(t, Of(3), Coerce(3))
	assert.Equal(t, Of(7), Coerce(uint16(7)))
	assert.Equal(t, Of(1.5), Coerce("1.5"))
	assert.Equal(t, Of(9), Coerce(json.Number("9")))
	assert.Equal(t, Of(4), Coerce(Of(4)))
	assert.False(t, Coerce(nil).Present())
	assert.False(t, Coerce(nilPtr).Present())
	assert.False(t, Coerce(true).Present())
	assert.False(t, Coerce(struct{}{}).Present())
	assert.False(t, Coerce(map[string]any{}).Present())
}

func TestCSVCodec(t *testing.T) {
	s, err := Of(0.25).MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "0.25", s)

	s, err = Missing().MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "", s)

	var v Value
	require.NoError(t, v.UnmarshalCSV("garbage"))
	assert.False(t, v.Present())
	require.NoError(t, v.UnmarshalCSV("3.5"))
	assert.Equal(t, Of(3.5), v)
}

func TestJSONCodec(t *testing.T) {
	type row struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	out, err := json.Marshal(row{A: Of(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(out))

	var r row
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2","b":null}`), &r))
	assert.Equal(t, Of(2), r.A)
	assert.False(t, r.B.Present())

	require.NoError(t, json.Unmarshal([]byte(`{"a":{"x":1},"b":7}`), &r))
	assert.False(t, r.A.Present())
	assert.Equal(t, Of(7), r.B)
}
