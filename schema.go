package jsonschema

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
)

// UnmarshalJSON unmarshals into [any] without losing number precision
// using [json.Number].
func UnmarshalJSON(r io.Reader) (any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err == nil || err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	return doc, nil
}

// jsonType returns the json type of v, or "" if v is not a json value.
func jsonType(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return ""
		}
		return "number"
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return ""
}

// toRat converts a json number to its exact rational value.
func toRat(v any) (*big.Rat, bool) {
	switch v := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(string(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		// shortest decimal form, so 0.1 is 1/10
		return new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, false
		}
		return new(big.Rat).SetString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case int:
		return new(big.Rat).SetInt64(int64(v)), true
	case int8:
		return new(big.Rat).SetInt64(int64(v)), true
	case int16:
		return new(big.Rat).SetInt64(int64(v)), true
	case int32:
		return new(big.Rat).SetInt64(int64(v)), true
	case int64:
		return new(big.Rat).SetInt64(v), true
	case uint:
		return new(big.Rat).SetUint64(uint64(v)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(v)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(v)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(v)), true
	case uint64:
		return new(big.Rat).SetUint64(v), true
	}
	return nil, false
}

// isInteger tells whether v is a number without fractional part,
// so 1.0 is an integer.
func isInteger(v any) bool {
	r, ok := toRat(v)
	return ok && r.IsInt()
}

// intValue returns the value of a keyword that must be a non-negative
// integer.
func intValue(v any) (int, bool) {
	r, ok := toRat(v)
	if !ok || !r.IsInt() || r.Sign() < 0 || !r.Num().IsInt64() {
		return 0, false
	}
	n := r.Num().Int64()
	if n > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(n), true
}

// equals tells whether two json values are equal. Numbers compare by
// value, so 1 equals 1.0.
func equals(v1, v2 any) bool {
	t1, t2 := jsonType(v1), jsonType(v2)
	if t1 != t2 {
		return false
	}
	switch t1 {
	case "array":
		arr1, arr2 := v1.([]any), v2.([]any)
		if len(arr1) != len(arr2) {
			return false
		}
		for i := range arr1 {
			if !equals(arr1[i], arr2[i]) {
				return false
			}
		}
		return true
	case "object":
		obj1, obj2 := v1.(map[string]any), v2.(map[string]any)
		if len(obj1) != len(obj2) {
			return false
		}
		for k, e1 := range obj1 {
			e2, ok := obj2[k]
			if !ok || !equals(e1, e2) {
				return false
			}
		}
		return true
	case "number":
		num1, ok1 := toRat(v1)
		num2, ok2 := toRat(v2)
		return ok1 && ok2 && num1.Cmp(num2) == 0
	case "":
		return false
	}
	return v1 == v2
}

// stringsOf returns the elements of a json array of strings.
func stringsOf(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
