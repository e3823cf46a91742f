package jsonschema

import (
	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

// Content keywords are annotations unless AssertContent is set.

func compileContentEncoding(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	name, ok := obj["contentEncoding"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "contentEncoding", Value: obj["contentEncoding"], Reason: "must be a string"}
	}
	if !c.assertContent {
		return nil, nil
	}
	decode, ok := GetDecoder(name)
	if !ok {
		c.logger.Debug("ignoring unknown content encoding", "location", sloc, "encoding", name)
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "contentEncoding")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		s, ok := v.(string)
		if !ok {
			return c.valid(kwloc, "contentEncoding", vloc, nil)
		}
		if _, err := decode(s); err != nil {
			return c.invalid(kwloc, "contentEncoding", vloc, &kind.ContentEncoding{Want: name, Err: err})
		}
		return c.valid(kwloc, "contentEncoding", vloc, nil)
	}, nil
}

// contentBytes returns the content of s, decoded with the sibling
// contentEncoding if any. A failure to decode is reported by
// contentEncoding itself.
func contentBytes(obj map[string]any, s string) ([]byte, bool) {
	name, ok := obj["contentEncoding"].(string)
	if !ok {
		return []byte(s), true
	}
	decode, ok := GetDecoder(name)
	if !ok {
		return []byte(s), true
	}
	b, err := decode(s)
	return b, err == nil
}

func compileContentMediaType(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	name, ok := obj["contentMediaType"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "contentMediaType", Value: obj["contentMediaType"], Reason: "must be a string"}
	}
	if !c.assertContent {
		return nil, nil
	}
	mt, ok := GetMediaType(name)
	if !ok {
		c.logger.Debug("ignoring unknown media type", "location", sloc, "mediaType", name)
		return nil, nil
	}
	kwloc := jsonpointer.Append(sloc, "contentMediaType")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		s, ok := v.(string)
		if !ok {
			return c.valid(kwloc, "contentMediaType", vloc, nil)
		}
		b, ok := contentBytes(obj, s)
		if !ok {
			return c.valid(kwloc, "contentMediaType", vloc, nil)
		}
		if _, err := mt(b); err != nil {
			return c.invalid(kwloc, "contentMediaType", vloc, &kind.ContentMediaType{Got: b, Want: name, Err: err})
		}
		return c.valid(kwloc, "contentMediaType", vloc, nil)
	}, nil
}

// compileContentSchema validates the decoded content, which requires a
// sibling contentMediaType.
func compileContentSchema(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	name, ok := obj["contentMediaType"].(string)
	if !ok || !c.assertContent {
		return nil, nil
	}
	mt, ok := GetMediaType(name)
	if !ok {
		return nil, nil
	}
	validate, err := c.compileSub(obj["contentSchema"], sloc, "contentSchema")
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "contentSchema")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		s, ok := v.(string)
		if !ok {
			return c.valid(kwloc, "contentSchema", vloc, nil)
		}
		b, ok := contentBytes(obj, s)
		if !ok {
			return c.valid(kwloc, "contentSchema", vloc, nil)
		}
		content, err := mt(b)
		if err != nil {
			return c.valid(kwloc, "contentSchema", vloc, nil)
		}
		if out := validate(content, vloc, nil); !out.Valid {
			return c.invalid(kwloc, "contentSchema", vloc, &kind.ContentSchema{}, out)
		}
		return c.valid(kwloc, "contentSchema", vloc, nil)
	}, nil
}
