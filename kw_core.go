package jsonschema

import (
	"strings"

	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

func compileRef(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	ref, ok := obj["$ref"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "$ref", Value: obj["$ref"], Reason: "must be a string"}
	}
	kwloc := jsonpointer.Append(sloc, "$ref")
	target, err := c.ix.DereferenceReference(ref, obj, kwloc)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("compiling reference", "location", kwloc, "ref", ref)
	validate, err := c.compileInPlace(target, kwloc)
	if err != nil {
		return nil, err
	}
	return c.refValidator("$ref", ref, kwloc, validate), nil
}

func compileDynamicRef(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	ref, ok := obj["$dynamicRef"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "$dynamicRef", Value: obj["$dynamicRef"], Reason: "must be a string"}
	}
	kwloc := jsonpointer.Append(sloc, "$dynamicRef")
	target, err := c.ix.DereferenceDynamicReference(ref, obj, kwloc)
	if err != nil {
		return nil, err
	}

	// the reference is dynamic only if its lexical target declares the
	// anchor it names; otherwise it behaves like $ref.
	if _, anchor, ok := strings.Cut(ref, "#"); ok && anchor != "" && !strings.HasPrefix(anchor, "/") {
		if tobj, ok := target.(map[string]any); ok && tobj["$dynamicAnchor"] == anchor {
			for _, res := range c.scope {
				if node, ok := res.DynamicAnchors[anchor]; ok {
					target = node
					c.logger.Debug("resolved dynamic reference", "location", kwloc, "ref", ref, "resource", res.URI)
					break
				}
			}
			c.markDynamic()
		}
	}

	validate, err := c.compileInPlace(target, kwloc)
	if err != nil {
		return nil, err
	}
	return c.refValidator("$dynamicRef", ref, kwloc, validate), nil
}

func (c *compiler) refValidator(keyword, ref, kwloc string, validate boundValidator) boundValidator {
	return func(v any, vloc string, _ AnnotationResults) *Output {
		out := validate(v, vloc, nil)
		if out.Valid {
			return out
		}
		return c.invalid(kwloc, keyword, vloc, &kind.Reference{Keyword: keyword, URL: ref}, out)
	}
}
