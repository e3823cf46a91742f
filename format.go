package jsonschema

import (
	"github.com/schemakit/jsonschema/formats"
	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

// compileFormat asserts the format only if asked to, or if the dialect
// uses the format-assertion vocabulary. Otherwise, and for unknown
// formats, the format name is produced as annotation.
func compileFormat(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	name, ok := obj["format"].(string)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "format", Value: obj["format"], Reason: "must be a string"}
	}
	kwloc := jsonpointer.Append(sloc, "format")
	annotate := func(v any, vloc string, _ AnnotationResults) *Output {
		return c.valid(kwloc, "format", vloc, AnnotationResults{"format": name})
	}
	if !c.assertFormat && !c.top().dialect.assertFormat {
		return annotate, nil
	}
	check := c.formatFunc(name)
	if check == nil {
		c.logger.Debug("ignoring unknown format", "location", sloc, "format", name)
		return annotate, nil
	}
	return func(v any, vloc string, acc AnnotationResults) *Output {
		s, ok := v.(string)
		if !ok {
			return annotate(v, vloc, acc)
		}
		if err := check(s); err != nil {
			return c.invalid(kwloc, "format", vloc, &kind.Format{Got: s, Want: name, Err: err})
		}
		return annotate(v, vloc, acc)
	}, nil
}

func (c *compiler) formatFunc(name string) formats.Func {
	if f, ok := c.formats[name]; ok {
		return f
	}
	if name == "regex" {
		return func(s string) error {
			_, err := c.regexpEngine(s)
			return err
		}
	}
	if f, ok := formats.Lookup(name); ok {
		return f
	}
	return nil
}
