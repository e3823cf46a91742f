package jsonschema

import (
	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

// The unevaluated keywords run last in a schema. The annotations they
// read include those of in-place applicators ($ref, allOf, if, ...)
// whose subschemas passed.

func compileUnevaluatedProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileSub(obj["unevaluatedProperties"], sloc, "unevaluatedProperties")
	if err != nil {
		return nil, err
	}
	isFalse := obj["unevaluatedProperties"] == false
	kwloc := jsonpointer.Append(sloc, "unevaluatedProperties")
	return func(v any, vloc string, acc AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "unevaluatedProperties", vloc, nil)
		}
		evaluated := acc.evaluatedProps()
		var uneval []string
		for _, name := range sortedKeys(m) {
			if _, ok := evaluated[name]; !ok {
				uneval = append(uneval, name)
			}
		}
		if len(uneval) == 0 {
			return c.valid(kwloc, "unevaluatedProperties", vloc, nil)
		}
		if isFalse {
			return c.invalid(kwloc, "unevaluatedProperties", vloc, &kind.UnevaluatedProperties{Properties: uneval})
		}
		var failed []string
		var causes []*Output
		for _, name := range uneval {
			out := validate(m[name], jsonpointer.Append(vloc, name), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "unevaluatedProperties", vloc, &kind.UnevaluatedProperties{Properties: []string{name}}, out)
				}
				failed = append(failed, name)
				causes = append(causes, out)
			}
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, "unevaluatedProperties", vloc, &kind.UnevaluatedProperties{Properties: failed}, causes...)
		}
		return c.valid(kwloc, "unevaluatedProperties", vloc, AnnotationResults{"unevaluatedProperties": uneval})
	}, nil
}

func compileUnevaluatedItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileSub(obj["unevaluatedItems"], sloc, "unevaluatedItems")
	if err != nil {
		return nil, err
	}
	isFalse := obj["unevaluatedItems"] == false
	kwloc := jsonpointer.Append(sloc, "unevaluatedItems")
	return func(v any, vloc string, acc AnnotationResults) *Output {
		items, ok := v.([]any)
		if !ok {
			return c.valid(kwloc, "unevaluatedItems", vloc, nil)
		}
		all, upto, matched := acc.evaluatedItems()
		if all {
			return c.valid(kwloc, "unevaluatedItems", vloc, nil)
		}
		var uneval []int
		for i := upto + 1; i < len(items); i++ {
			if _, ok := matched[i]; !ok {
				uneval = append(uneval, i)
			}
		}
		if len(uneval) == 0 {
			return c.valid(kwloc, "unevaluatedItems", vloc, nil)
		}
		if isFalse {
			return c.invalid(kwloc, "unevaluatedItems", vloc, &kind.UnevaluatedItems{Indexes: uneval})
		}
		var failed []int
		var causes []*Output
		for _, i := range uneval {
			out := validate(items[i], jsonpointer.Index(vloc, i), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "unevaluatedItems", vloc, &kind.UnevaluatedItems{Indexes: []int{i}}, out)
				}
				failed = append(failed, i)
				causes = append(causes, out)
			}
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, "unevaluatedItems", vloc, &kind.UnevaluatedItems{Indexes: failed}, causes...)
		}
		return c.valid(kwloc, "unevaluatedItems", vloc, AnnotationResults{"unevaluatedItems": true})
	}, nil
}
