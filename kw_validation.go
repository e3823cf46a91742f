package jsonschema

import (
	"math/big"
	"sort"
	"unicode/utf8"

	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

var jsonTypes = []string{"null", "boolean", "number", "integer", "string", "array", "object"}

func compileType(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	var types []string
	switch t := obj["type"].(type) {
	case string:
		types = []string{t}
	case []any:
		var ok bool
		if types, ok = stringsOf(t); !ok {
			return nil, &InvalidKeywordError{Keyword: "type", Value: t, Reason: "must be an array of strings"}
		}
	default:
		return nil, &InvalidKeywordError{Keyword: "type", Value: t, Reason: "must be a string or an array of strings"}
	}
	for _, t := range types {
		if !contains(jsonTypes, t) {
			return nil, &InvalidKeywordError{Keyword: "type", Value: t, Reason: "unknown type"}
		}
	}
	kwloc := jsonpointer.Append(sloc, "type")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		got := jsonType(v)
		for _, t := range types {
			if t == got || t == "integer" && got == "number" && isInteger(v) {
				return c.valid(kwloc, "type", vloc, nil)
			}
		}
		if got == "number" && isInteger(v) {
			got = "integer"
		}
		return c.invalid(kwloc, "type", vloc, &kind.Type{Got: got, Want: types})
	}, nil
}

func compileEnum(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, ok := obj["enum"].([]any)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "enum", Value: obj["enum"], Reason: "must be an array"}
	}
	kwloc := jsonpointer.Append(sloc, "enum")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		for _, item := range want {
			if equals(v, item) {
				return c.valid(kwloc, "enum", vloc, nil)
			}
		}
		return c.invalid(kwloc, "enum", vloc, &kind.Enum{Got: v, Want: want})
	}, nil
}

func compileConst(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want := obj["const"]
	kwloc := jsonpointer.Append(sloc, "const")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		if equals(v, want) {
			return c.valid(kwloc, "const", vloc, nil)
		}
		return c.invalid(kwloc, "const", vloc, &kind.Const{Got: v, Want: want})
	}, nil
}

// --

func numberKeyword(obj map[string]any, keyword string) (*big.Rat, error) {
	r, ok := toRat(obj[keyword])
	if !ok {
		return nil, &InvalidKeywordError{Keyword: keyword, Value: obj[keyword], Reason: "must be a number"}
	}
	return r, nil
}

// compileBound compiles a numeric bound. fails reports whether the
// comparison of the instance with the bound is a failure.
func compileBound(c *compiler, sloc, keyword string, want *big.Rat, fails func(cmp int) bool, newKind func(got, want *big.Rat) kind.Kind) boundValidator {
	kwloc := jsonpointer.Append(sloc, keyword)
	return func(v any, vloc string, _ AnnotationResults) *Output {
		got, ok := toRat(v)
		if !ok || !fails(got.Cmp(want)) {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		return c.invalid(kwloc, keyword, vloc, newKind(got, want))
	}
}

func compileMultipleOf(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, err := numberKeyword(obj, "multipleOf")
	if err != nil {
		return nil, err
	}
	if want.Sign() <= 0 {
		return nil, &InvalidKeywordError{Keyword: "multipleOf", Value: obj["multipleOf"], Reason: "must be greater than 0"}
	}
	kwloc := jsonpointer.Append(sloc, "multipleOf")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		got, ok := toRat(v)
		if !ok || new(big.Rat).Quo(got, want).IsInt() {
			return c.valid(kwloc, "multipleOf", vloc, nil)
		}
		return c.invalid(kwloc, "multipleOf", vloc, &kind.MultipleOf{Got: got, Want: want})
	}, nil
}

// exclusiveFlag reports the draft-04 boolean form of exclusiveMaximum
// and exclusiveMinimum.
func exclusiveFlag(obj map[string]any, keyword string) bool {
	b, _ := obj[keyword].(bool)
	return b
}

func compileMaximum(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, err := numberKeyword(obj, "maximum")
	if err != nil {
		return nil, err
	}
	if exclusiveFlag(obj, "exclusiveMaximum") {
		return compileBound(c, sloc, "maximum", want,
			func(cmp int) bool { return cmp >= 0 },
			func(got, want *big.Rat) kind.Kind { return &kind.ExclusiveMaximum{Got: got, Want: want} },
		), nil
	}
	return compileBound(c, sloc, "maximum", want,
		func(cmp int) bool { return cmp > 0 },
		func(got, want *big.Rat) kind.Kind { return &kind.Maximum{Got: got, Want: want} },
	), nil
}

func compileMinimum(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, err := numberKeyword(obj, "minimum")
	if err != nil {
		return nil, err
	}
	if exclusiveFlag(obj, "exclusiveMinimum") {
		return compileBound(c, sloc, "minimum", want,
			func(cmp int) bool { return cmp <= 0 },
			func(got, want *big.Rat) kind.Kind { return &kind.ExclusiveMinimum{Got: got, Want: want} },
		), nil
	}
	return compileBound(c, sloc, "minimum", want,
		func(cmp int) bool { return cmp < 0 },
		func(got, want *big.Rat) kind.Kind { return &kind.Minimum{Got: got, Want: want} },
	), nil
}

func compileExclusiveMaximum(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	if _, ok := obj["exclusiveMaximum"].(bool); ok {
		if c.draft().version > 4 {
			return nil, &InvalidKeywordError{Keyword: "exclusiveMaximum", Value: obj["exclusiveMaximum"], Reason: "must be a number"}
		}
		return nil, nil
	}
	if c.draft().version == 4 {
		return nil, &InvalidKeywordError{Keyword: "exclusiveMaximum", Value: obj["exclusiveMaximum"], Reason: "must be a boolean"}
	}
	want, err := numberKeyword(obj, "exclusiveMaximum")
	if err != nil {
		return nil, err
	}
	return compileBound(c, sloc, "exclusiveMaximum", want,
		func(cmp int) bool { return cmp >= 0 },
		func(got, want *big.Rat) kind.Kind { return &kind.ExclusiveMaximum{Got: got, Want: want} },
	), nil
}

func compileExclusiveMinimum(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	if _, ok := obj["exclusiveMinimum"].(bool); ok {
		if c.draft().version > 4 {
			return nil, &InvalidKeywordError{Keyword: "exclusiveMinimum", Value: obj["exclusiveMinimum"], Reason: "must be a number"}
		}
		return nil, nil
	}
	if c.draft().version == 4 {
		return nil, &InvalidKeywordError{Keyword: "exclusiveMinimum", Value: obj["exclusiveMinimum"], Reason: "must be a boolean"}
	}
	want, err := numberKeyword(obj, "exclusiveMinimum")
	if err != nil {
		return nil, err
	}
	return compileBound(c, sloc, "exclusiveMinimum", want,
		func(cmp int) bool { return cmp <= 0 },
		func(got, want *big.Rat) kind.Kind { return &kind.ExclusiveMinimum{Got: got, Want: want} },
	), nil
}

// --

func countKeyword(obj map[string]any, keyword string) (int, error) {
	n, ok := intValue(obj[keyword])
	if !ok {
		return 0, &InvalidKeywordError{Keyword: keyword, Value: obj[keyword], Reason: "must be a non-negative integer"}
	}
	return n, nil
}

// compileCount compiles a keyword bounding the size of instances, as
// measured by size. size reports false for instances of other types.
func compileCount(c *compiler, obj map[string]any, sloc, keyword string, isMax bool,
	size func(v any) (int, bool), newKind func(got, want int) kind.Kind,
) (boundValidator, error) {
	want, err := countKeyword(obj, keyword)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, keyword)
	return func(v any, vloc string, _ AnnotationResults) *Output {
		got, ok := size(v)
		if !ok || isMax && got <= want || !isMax && got >= want {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		return c.invalid(kwloc, keyword, vloc, newKind(got, want))
	}, nil
}

func stringLength(v any) (int, bool) {
	s, ok := v.(string)
	return utf8.RuneCountInString(s), ok
}

func arrayLength(v any) (int, bool) {
	arr, ok := v.([]any)
	return len(arr), ok
}

func objectSize(v any) (int, bool) {
	m, ok := v.(map[string]any)
	return len(m), ok
}

func compileMaxLength(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "maxLength", true, stringLength,
		func(got, want int) kind.Kind { return &kind.MaxLength{Got: got, Want: want} })
}

func compileMinLength(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "minLength", false, stringLength,
		func(got, want int) kind.Kind { return &kind.MinLength{Got: got, Want: want} })
}

func compileMaxItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "maxItems", true, arrayLength,
		func(got, want int) kind.Kind { return &kind.MaxItems{Got: got, Want: want} })
}

func compileMinItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "minItems", false, arrayLength,
		func(got, want int) kind.Kind { return &kind.MinItems{Got: got, Want: want} })
}

func compileMaxProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "maxProperties", true, objectSize,
		func(got, want int) kind.Kind { return &kind.MaxProperties{Got: got, Want: want} })
}

func compileMinProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	return compileCount(c, obj, sloc, "minProperties", false, objectSize,
		func(got, want int) kind.Kind { return &kind.MinProperties{Got: got, Want: want} })
}

// --

func compilePattern(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	expr, ok := obj["pattern"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "pattern", Value: obj["pattern"], Reason: "must be a string"}
	}
	re, err := c.compileRegexp("pattern", expr)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "pattern")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		s, ok := v.(string)
		if !ok || re.MatchString(s) {
			return c.valid(kwloc, "pattern", vloc, nil)
		}
		return c.invalid(kwloc, "pattern", vloc, &kind.Pattern{Got: s, Want: expr})
	}, nil
}

func compileUniqueItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	unique, ok := obj["uniqueItems"].(bool)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "uniqueItems", Value: obj["uniqueItems"], Reason: "must be a boolean"}
	}
	if !unique {
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "uniqueItems")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		arr, ok := v.([]any)
		if !ok {
			return c.valid(kwloc, "uniqueItems", vloc, nil)
		}
		for i := 1; i < len(arr); i++ {
			for j := 0; j < i; j++ {
				if equals(arr[i], arr[j]) {
					return c.invalid(kwloc, "uniqueItems", vloc, &kind.UniqueItems{Duplicates: [2]int{j, i}})
				}
			}
		}
		return c.valid(kwloc, "uniqueItems", vloc, nil)
	}, nil
}

// compileMaxContains and compileMinContains read the indexes matched by
// the sibling contains, which runs before them. Matches reported through
// $ref or other in-place applicators do not count.
func compileMaxContains(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, err := countKeyword(obj, "maxContains")
	if err != nil {
		return nil, err
	}
	if _, ok := obj["contains"]; !ok {
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "maxContains")
	return func(v any, vloc string, acc AnnotationResults) *Output {
		matched, ok := acc[ownContains].([]int)
		if !ok || len(matched) <= want {
			return c.valid(kwloc, "maxContains", vloc, nil)
		}
		return c.invalid(kwloc, "maxContains", vloc, &kind.MaxContains{Got: matched, Want: want})
	}, nil
}

func compileMinContains(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	want, err := countKeyword(obj, "minContains")
	if err != nil {
		return nil, err
	}
	if _, ok := obj["contains"]; !ok {
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "minContains")
	return func(v any, vloc string, acc AnnotationResults) *Output {
		// without the annotation, contains failed or v is no array.
		matched, ok := acc[ownContains].([]int)
		if !ok || len(matched) >= want {
			return c.valid(kwloc, "minContains", vloc, nil)
		}
		return c.invalid(kwloc, "minContains", vloc, &kind.MinContains{Got: matched, Want: want})
	}, nil
}

// --

func compileRequired(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	required, ok := stringsOf(obj["required"])
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "required", Value: obj["required"], Reason: "must be an array of strings"}
	}
	if len(required) == 0 {
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "required")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "required", vloc, nil)
		}
		var missing []string
		for _, name := range required {
			if _, ok := m[name]; !ok {
				if c.flag {
					return flagInvalid
				}
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			return c.valid(kwloc, "required", vloc, nil)
		}
		return c.invalid(kwloc, "required", vloc, &kind.Required{Missing: missing})
	}, nil
}

func compileDependentRequired(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	deps, ok := obj["dependentRequired"].(map[string]any)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "dependentRequired", Value: obj["dependentRequired"], Reason: "must be an object"}
	}
	required := map[string][]string{}
	for prop, v := range deps {
		names, ok := stringsOf(v)
		if !ok {
			return nil, &InvalidKeywordError{Keyword: "dependentRequired", Value: v, Reason: "must be an array of strings"}
		}
		required[prop] = names
	}
	return dependentRequiredValidator(c, jsonpointer.Append(sloc, "dependentRequired"), "dependentRequired", required,
		func(prop string, missing []string) kind.Kind {
			return &kind.DependentRequired{Prop: prop, Missing: missing}
		}), nil
}

// dependentRequiredValidator also serves the array form of dependencies.
func dependentRequiredValidator(c *compiler, kwloc, keyword string, required map[string][]string,
	newKind func(prop string, missing []string) kind.Kind,
) boundValidator {
	props := make([]string, 0, len(required))
	for prop := range required {
		props = append(props, prop)
	}
	sort.Strings(props)
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		var failures []*Output
		for _, prop := range props {
			if _, ok := m[prop]; !ok {
				continue
			}
			var missing []string
			for _, name := range required[prop] {
				if _, ok := m[name]; !ok {
					missing = append(missing, name)
				}
			}
			if len(missing) == 0 {
				continue
			}
			out := c.invalid(jsonpointer.Append(kwloc, prop), keyword, vloc, newKind(prop, missing))
			if c.failFast {
				return out
			}
			failures = append(failures, out)
		}
		switch len(failures) {
		case 0:
			return c.valid(kwloc, keyword, vloc, nil)
		case 1:
			return failures[0]
		}
		return c.group(kwloc, vloc, failures)
	}
}
