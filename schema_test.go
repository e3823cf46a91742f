package jsonschema

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"{", false},
		{"{}", true},
		{"{}A", false},
		{"{}{}", false},
		{"1.50", true},
	}
	for _, test := range tests {
		_, err := UnmarshalJSON(strings.NewReader(test.input))
		if valid := err == nil; valid != test.valid {
			t.Log(err)
			t.Errorf("UnmarshalJSON(%q) valid: got %v, want %v", test.input, valid, test.valid)
		}
	}
}

func TestEquals(t *testing.T) {
	tests := []struct {
		v1, v2 any
		want   bool
	}{
		{1.0, 1, true},
		{-1.0, -1, true},
		{json.Number("1.0"), 1, true},
		{json.Number("0.1"), 0.1, true},
		{1, true, false},
		{0, false, false},
		{nil, nil, true},
		{"a", "a", true},
		{[]any{1, "a"}, []any{1.0, "a"}, true},
		{[]any{1, "a"}, []any{"a", 1}, false},
		{map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2, "a": 1.0}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
	}
	for _, test := range tests {
		if got := equals(test.v1, test.v2); got != test.want {
			t.Errorf("equals(%v, %v): got %v, want %v", test.v1, test.v2, got, test.want)
		}
	}
}

func TestJSONType(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{true, "boolean"},
		{json.Number("1"), "number"},
		{int64(1), "number"},
		{1.5, "number"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
		{"", "string"},
		{[]any{}, "array"},
		{map[string]any{}, "object"},
		{struct{}{}, ""},
	}
	for _, test := range tests {
		if got := jsonType(test.v); got != test.want {
			t.Errorf("jsonType(%#v): got %q, want %q", test.v, got, test.want)
		}
	}
}

func TestIsInteger(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{json.Number("1"), true},
		{json.Number("1.0"), true},
		{json.Number("1e2"), true},
		{json.Number("1.5"), false},
		{2.0, true},
		{2.5, false},
		{uint8(3), true},
		{"1", false},
	}
	for _, test := range tests {
		if got := isInteger(test.v); got != test.want {
			t.Errorf("isInteger(%#v): got %v, want %v", test.v, got, test.want)
		}
	}
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		v    any
		want int
		ok   bool
	}{
		{json.Number("3"), 3, true},
		{json.Number("3.0"), 3, true},
		{json.Number("3.5"), 0, false},
		{json.Number("-1"), 0, false},
		{"3", 0, false},
	}
	for _, test := range tests {
		got, ok := intValue(test.v)
		if ok != test.ok || got != test.want {
			t.Errorf("intValue(%#v): got (%d, %v), want (%d, %v)", test.v, got, ok, test.want, test.ok)
		}
	}
}
