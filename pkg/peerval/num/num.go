// Package num holds the missing-aware number used by every table in peerval.
package num

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Value is either a present float64 or missing. The zero Value is missing.
type Value struct {
	v  float64
	ok bool
}

// Of returns a present value. NaN and infinities are treated as missing.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{v: f, ok: true}
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Present reports whether v holds a number.
func (v Value) Present() bool { return v.ok }

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Or returns the number, or def when missing.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return ""
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// Div returns a/b, or missing when either side is missing or b is zero.
func Div(a, b Value) Value {
	if !a.ok || !b.ok || b.v == 0 {
		return Value{}
	}
	return Of(a.v / b.v)
}

// Add returns a+b, missing when either side is missing.
func Add(a, b Value) Value {
	if !a.ok || !b.ok {
		return Value{}
	}
	return Of(a.v + b.v)
}

// Sub returns a-b, missing when either side is missing.
func Sub(a, b Value) Value {
	if !a.ok || !b.ok {
		return Value{}
	}
	return Of(a.v - b.v)
}

// First returns the first present value, or missing.
func First(vals ...Value) Value {
	for _, v := range vals {
		if v.ok {
			return v
		}
	}
	return Value{}
}

// Count returns how many of vals are present.
func Count(vals []Value) int {
	n := 0
	for _, v := range vals {
		if v.ok {
			n++
		}
	}
	return n
}

var missingTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"none": {},
	"null": {},
	"nat":  {},
}

// Parse interprets s as a number. Anything unparseable is missing.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return Value{}
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}
	}
	return Of(f)
}

// Coerce converts an arbitrary value to a Value. Numbers and numeric strings are
// present; nil, booleans, and anything else are missing.
func Coerce(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case float64:
		return Of(t)
	case float32:
		return Of(float64(t))
	case int:
		return Of(float64(t))
	case int64:
		return Of(float64(t))
	case int32:
		return Of(float64(t))
	case uint64:
		return Of(float64(t))
	case json.Number:
		return Parse(t.String())
	case string:
		return Parse(t)
	case []byte:
		return Parse(string(t))
	case bool:
		return Value{}
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Value{}
		}
		return Coerce(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Of(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Of(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Of(rv.Float())
	case reflect.String:
		return Parse(rv.String())
	}
	return Value{}
}

// MarshalCSV writes missing as an empty cell.
func (v Value) MarshalCSV() (string, error) { return v.String(), nil }

// UnmarshalCSV never fails; malformed cells become missing.
func (v *Value) UnmarshalCSV(s string) error {
	*v = Parse(s)
	return nil
}

// MarshalJSON writes missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		*v = Value{}
		return nil
	}
	*v = Coerce(raw)
	return nil
}
