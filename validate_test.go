package jsonschema_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/future"
	"github.com/schemakit/jsonschema/index"
	"github.com/schemakit/jsonschema/kind"
)

func doc(t *testing.T, s string) any {
	t.Helper()
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(s))
	require.NoError(t, err)
	return v
}

func verbose(t *testing.T, schema any) jsonschema.Validator {
	t.Helper()
	validate, err := jsonschema.JSONValidator(schema, &jsonschema.Options{OutputFormat: jsonschema.FormatVerbose})
	require.NoError(t, err)
	return validate
}

func TestBooleanSchemas(t *testing.T) {
	instances := []string{`null`, `true`, `1`, `"a"`, `[]`, `{"a": [1]}`}
	for _, s := range instances {
		ok, err := jsonschema.IsJSONValid(doc(t, s), true, nil)
		require.NoError(t, err)
		assert.True(t, ok, s)

		ok, err = jsonschema.IsJSONValid(doc(t, s), false, nil)
		require.NoError(t, err)
		assert.False(t, ok, s)
	}

	out := verbose(t, false)(nil)
	assert.False(t, out.Valid)
	assert.Equal(t, "expected no value", out.Message)
	assert.IsType(t, &kind.FalseSchema{}, out.Kind)
}

func TestFailFastAgreement(t *testing.T) {
	schemas := []string{
		`{"type": "object", "required": ["a", "b"], "properties": {"a": {"type": "string"}}}`,
		`{"allOf": [{"minimum": 2}, {"multipleOf": 2}]}`,
		`{"anyOf": [{"type": "string"}, {"minimum": 10}]}`,
		`{"oneOf": [{"type": "integer"}, {"minimum": 2}]}`,
		`{"items": {"type": "integer"}, "maxItems": 2, "uniqueItems": true}`,
		`{"properties": {"a": true}, "unevaluatedProperties": false}`,
		`{"not": {"enum": [1, "a"]}}`,
	}
	instances := []string{`{}`, `{"a": 1}`, `{"a": "x", "b": 2}`, `1`, `2`, `4`, `12`, `"a"`, `[1, 1, 2]`, `[1, "2"]`, `[1]`}

	for _, s := range schemas {
		schema := doc(t, s)
		var validators []jsonschema.Validator
		for _, opts := range []*jsonschema.Options{
			nil,
			{OutputFormat: jsonschema.FormatVerbose},
			{OutputFormat: jsonschema.FormatVerbose, FailFast: true},
		} {
			validate, err := jsonschema.JSONValidator(schema, opts)
			require.NoError(t, err)
			validators = append(validators, validate)
		}
		for _, i := range instances {
			instance := doc(t, i)
			want := validators[0](instance).Valid
			for _, validate := range validators[1:] {
				assert.Equal(t, want, validate(instance).Valid, "schema %s instance %s", s, i)
			}
		}
	}
}

func TestCombinators(t *testing.T) {
	a := `{"type": "integer"}`
	b := `{"minimum": 5}`
	instances := []string{`1`, `7`, `7.5`, `2.5`}
	for _, i := range instances {
		instance := doc(t, i)
		va, err := jsonschema.IsJSONValid(instance, doc(t, a), nil)
		require.NoError(t, err)
		vb, err := jsonschema.IsJSONValid(instance, doc(t, b), nil)
		require.NoError(t, err)

		for comb, want := range map[string]bool{
			"allOf": va && vb,
			"anyOf": va || vb,
			"oneOf": va != vb,
		} {
			schema := doc(t, fmt.Sprintf(`{%q: [%s, %s]}`, comb, a, b))
			got, err := jsonschema.IsJSONValid(instance, schema, nil)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s with %s", comb, i)
		}
	}
}

func TestSelfReference(t *testing.T) {
	schema := doc(t, `{"$id": "#r", "properties": {"self": {"$ref": "#r"}}}`)
	ok, err := jsonschema.IsJSONValid(doc(t, `{"self": {"self": {}}}`), schema, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	schema = doc(t, `{"type": "object", "properties": {"self": {"$ref": "#"}}}`)
	deep := strings.Repeat(`{"self": `, 200) + `{}` + strings.Repeat(`}`, 200)
	ok, err = jsonschema.IsJSONValid(doc(t, deep), schema, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	bad := strings.Repeat(`{"self": `, 50) + `1` + strings.Repeat(`}`, 50)
	out := verbose(t, schema)(doc(t, bad))
	require.False(t, out.Valid)
	leaf := out.Leaves()[0]
	assert.Equal(t, strings.Repeat("/self", 50), leaf.InstanceLocation)
}

func TestUnevaluatedProperties(t *testing.T) {
	validate := verbose(t, doc(t, `{"properties": {"a": true}, "unevaluatedProperties": false}`))
	assert.True(t, validate(doc(t, `{"a": 1}`)).Valid)

	out := validate(doc(t, `{"a": 1, "b": 2}`))
	require.False(t, out.Valid)
	k, ok := out.Kind.(*kind.UnevaluatedProperties)
	require.True(t, ok, "got %T", out.Kind)
	assert.Equal(t, []string{"b"}, k.Properties)
}

func TestMinContains(t *testing.T) {
	schema := doc(t, `{"contains": {"type": "number"}, "minContains": 2}`)
	validate := verbose(t, schema)

	out := validate(doc(t, `[1, "x"]`))
	require.False(t, out.Valid)
	assert.Equal(t, "minContains", out.SchemaKeyword)

	out = validate(doc(t, `[1, 2]`))
	assert.True(t, out.Valid)
	assert.Equal(t, []int{0, 1}, out.Annotations["contains"])
}

func TestContainsBoundsIgnoreInPlaceMatches(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		data   string
		valid  bool
	}{
		{
			name:   "maxContains beside $ref",
			schema: `{"$defs": {"c": {"contains": true}}, "$ref": "#/$defs/c", "contains": {"const": 1}, "maxContains": 1}`,
			data:   `[1, 2]`,
			valid:  true,
		},
		{
			name:   "minContains beside $ref",
			schema: `{"$defs": {"c": {"contains": true}}, "$ref": "#/$defs/c", "contains": {"const": 1}, "minContains": 2}`,
			data:   `[1, 2, 3]`,
			valid:  false,
		},
		{
			name:   "minContains beside allOf",
			schema: `{"allOf": [{"contains": {"type": "string"}}], "contains": {"const": 1}, "minContains": 2}`,
			data:   `[1, "a", "b"]`,
			valid:  false,
		},
		{
			name:   "maxContains beside anyOf",
			schema: `{"anyOf": [{"contains": true}], "contains": {"const": 1}, "maxContains": 1}`,
			data:   `[1, 2, 3]`,
			valid:  true,
		},
		{
			name:   "own contains fails",
			schema: `{"$defs": {"c": {"contains": true}}, "$ref": "#/$defs/c", "contains": {"const": 5}, "minContains": 1}`,
			data:   `[1, 2]`,
			valid:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, format := range []jsonschema.OutputFormat{jsonschema.FormatFlag, jsonschema.FormatVerbose} {
				validate, err := jsonschema.JSONValidator(doc(t, tt.schema), &jsonschema.Options{OutputFormat: format})
				require.NoError(t, err)
				assert.Equal(t, tt.valid, validate(doc(t, tt.data)).Valid, "format %v", format)
			}
		})
	}
}

func TestContainsAnnotationUnion(t *testing.T) {
	schema := doc(t, `{
		"$defs": {"c": {"contains": {"type": "string"}}},
		"$ref": "#/$defs/c",
		"contains": {"const": 1},
		"maxContains": 1,
		"unevaluatedItems": false
	}`)
	validate := verbose(t, schema)

	out := validate(doc(t, `[1, "a"]`))
	require.True(t, out.Valid, "%#v", out)
	assert.Equal(t, []int{0, 1}, out.Annotations["contains"])
	assert.Len(t, out.Annotations, 1)

	assert.False(t, validate(doc(t, `[1, "a", 2]`)).Valid)
}

func TestInfiniteLoop(t *testing.T) {
	schemas := []string{
		`{"$defs": {"a": {"$ref": "#/$defs/b"}, "b": {"$ref": "#/$defs/a"}}, "$ref": "#/$defs/a"}`,
		`{"$ref": "#"}`,
		`{"anyOf": [{"type": "string"}, {"$ref": "#"}]}`,
		`{"if": {"$ref": "#"}}`,
	}
	for _, s := range schemas {
		for _, d := range []*jsonschema.Draft{jsonschema.Draft7, jsonschema.Draft2020} {
			_, err := d.JSONValidator(doc(t, s), nil)
			var loop *jsonschema.InfiniteLoopError
			require.ErrorAs(t, err, &loop, "%s [%v]", s, d)
			var serr *jsonschema.SchemaError
			assert.ErrorAs(t, err, &serr)
		}
	}

	// descending into the instance ends the recursion.
	validate := verbose(t, doc(t, `{"anyOf": [{"type": "integer"}, {"type": "array", "items": {"$ref": "#"}}]}`))
	assert.True(t, validate(doc(t, `[1, [2, [3]]]`)).Valid)
	assert.False(t, validate(doc(t, `[1, ["x"]]`)).Valid)
}

func TestRequiredScenario(t *testing.T) {
	schema := doc(t, `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`)

	err := jsonschema.ValidateJSON(doc(t, `{}`), schema, &jsonschema.Options{OutputFormat: jsonschema.FormatVerbose})
	var verr *jsonschema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "missing property 'name'", verr.Message)
	assert.Equal(t, "/required", verr.Output.SchemaLocation)
	assert.Equal(t, "", verr.Output.InstanceLocation)

	assert.NoError(t, jsonschema.ValidateJSON(doc(t, `{"name": "Joan"}`), schema, nil))

	// flag format has no message to report
	err = jsonschema.ValidateJSON(doc(t, `{}`), schema, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "instance is invalid", verr.Message)
	assert.Equal(t, "jsonschema: validation failed: instance is invalid", err.Error())
}

func TestFlagOutput(t *testing.T) {
	schema := doc(t, `{"type": "object", "required": ["name"]}`)

	validate, err := jsonschema.JSONValidator(schema, nil)
	require.NoError(t, err)
	out := validate(doc(t, `{}`))
	assert.True(t, out.IsFlag())
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid": false}`, string(b))
	assert.Equal(t, `{"valid":false}`, string(b))

	b, err = json.Marshal(validate(doc(t, `{"name": 1}`)))
	require.NoError(t, err)
	assert.Equal(t, `{"valid":true}`, string(b))

	b, err = json.Marshal(verbose(t, schema)(doc(t, `{}`)))
	require.NoError(t, err)
	res := gjson.ParseBytes(b)
	assert.False(t, res.Get("valid").Bool())
	assert.Equal(t, "missing property 'name'", res.Get("message").String())
	assert.Equal(t, "/required", res.Get("schemaLocation").String())
	assert.True(t, res.Get("instanceLocation").Exists())
}

func TestVerboseOutputTree(t *testing.T) {
	schema := doc(t, `{
		"properties": {
			"a": {"type": "string", "minLength": 3},
			"b": {"maximum": 5}
		}
	}`)
	out := verbose(t, schema)(doc(t, `{"a": 1, "b": 9}`))
	require.False(t, out.Valid)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	res := gjson.ParseBytes(b)
	assert.Equal(t, "/properties", res.Get("schemaLocation").String())
	assert.Equal(t, int64(2), res.Get("errors.#").Int())
	assert.Equal(t, "/a", res.Get("errors.0.instanceLocation").String())
	assert.Equal(t, "/properties/a/type", res.Get("errors.0.schemaLocation").String())
	assert.Equal(t, "/b", res.Get("errors.1.instanceLocation").String())
	assert.Equal(t, "maximum", res.Get("errors.1.schemaKeyword").String())

	leaves := out.Leaves()
	require.Len(t, leaves, 2)
	assert.Equal(t, "I[/b] S[/properties/b/maximum] maximum: got 9, want 5", leaves[1].String())
}

func TestGroupedFailures(t *testing.T) {
	out := verbose(t, doc(t, `{"minimum": 5, "multipleOf": 2}`))(doc(t, `3`))
	require.False(t, out.Valid)
	assert.IsType(t, &kind.Group{}, out.Kind)
	require.Len(t, out.Errors, 2)
	assert.IsType(t, &kind.MultipleOf{}, out.Errors[0].Kind)
	assert.IsType(t, &kind.Minimum{}, out.Errors[1].Kind)
}

func TestValidationErrorGoString(t *testing.T) {
	schema := doc(t, `{"allOf": [{"type": "string"}, {"minimum": 10}]}`)
	err := jsonschema.ValidateJSON(doc(t, `1`), schema, &jsonschema.Options{OutputFormat: jsonschema.FormatVerbose})
	var verr *jsonschema.ValidationError
	require.ErrorAs(t, err, &verr)
	tree := fmt.Sprintf("%#v", verr)
	lines := strings.Split(tree, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "jsonschema: validation failed", lines[0])
	assert.Contains(t, tree, "S[/allOf/0/type]")
	assert.Contains(t, tree, "S[/allOf/1/minimum]")
}

func TestAnnotationsCollected(t *testing.T) {
	schema := doc(t, `{
		"prefixItems": [true],
		"contains": {"type": "string"},
		"allOf": [{"properties": {"x": true}}]
	}`)
	out := verbose(t, schema)(doc(t, `[1, "a", "b"]`))
	require.True(t, out.Valid)
	assert.Equal(t, 0, out.Annotations["prefixItems"])
	assert.Equal(t, []int{1, 2}, out.Annotations["contains"])

	out = verbose(t, schema)(doc(t, `{"x": 1, "y": 2}`))
	require.True(t, out.Valid)
	assert.Equal(t, []string{"x"}, out.Annotations["properties"])
}

func TestConcurrentValidation(t *testing.T) {
	validate := verbose(t, doc(t, `{"items": {"type": "integer", "minimum": 0}}`))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := validate([]any{i, -i - 1})
			assert.False(t, out.Valid)
			assert.Equal(t, "/1", out.Leaves()[0].InstanceLocation)
		}(i)
	}
	wg.Wait()
}

func TestDollarSchemaSelectsDialect(t *testing.T) {
	schema := doc(t, `{
		"$schema": "http://json-schema.org/draft-04/schema#",
		"maximum": 5, "exclusiveMaximum": true
	}`)
	ok, err := jsonschema.IsJSONValid(doc(t, `5`), schema, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// embedded resource switches dialect
	schema = doc(t, `{
		"$defs": {
			"old": {
				"$id": "http://example.com/old.json",
				"$schema": "http://json-schema.org/draft-07/schema#",
				"items": [{"type": "string"}],
				"additionalItems": false
			}
		},
		"$ref": "http://example.com/old.json"
	}`)
	ok, err = jsonschema.IsJSONValid(doc(t, `["a"]`), schema, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = jsonschema.IsJSONValid(doc(t, `["a", "b"]`), schema, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultMetaSchemaURI(t *testing.T) {
	schema := doc(t, `{"items": [{"type": "string"}]}`)
	_, err := jsonschema.JSONValidator(schema, nil)
	assert.Error(t, err)

	ok, err := jsonschema.IsJSONValid(doc(t, `[1]`), schema, &jsonschema.Options{
		DefaultMetaSchemaURI: jsonschema.Draft7.MetaSchemaURI(),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchemaError(t *testing.T) {
	_, err := jsonschema.JSONValidator(doc(t, `{"properties": {"a": {"minimum": "x"}}}`), nil)
	var serr *jsonschema.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "/properties/a/minimum", serr.SchemaLocation)
	var kerr *jsonschema.InvalidKeywordError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "minimum", kerr.Keyword)
}

func TestRetrieveErrors(t *testing.T) {
	schema := doc(t, `{"$ref": "http://example.com/a.json"}`)
	_, err := jsonschema.JSONValidator(schema, nil)
	assert.ErrorIs(t, err, index.ErrNoRetrieve)

	boom := errors.New("boom")
	_, err = jsonschema.JSONValidator(schema, &jsonschema.Options{
		Retrieve: func(uri string) *future.Future[any] {
			return future.Rejected[any](boom)
		},
	})
	assert.ErrorIs(t, err, boom)
}

func TestPrebuiltIndex(t *testing.T) {
	ix := index.New(index.Config{DefaultDialect: jsonschema.Draft2020.MetaSchemaURI()})
	require.NoError(t, ix.AddDocument("http://example.com/defs.json", doc(t, `{"$defs": {"pos": {"minimum": 0}}}`)))
	schema := doc(t, `{"$ref": "defs.json#/$defs/pos"}`)
	require.NoError(t, ix.AddDocument("http://example.com/root.json", schema))
	_, err := ix.Resolve(context.Background()).Await(context.Background())
	require.NoError(t, err)

	validate, err := jsonschema.JSONValidator(schema, &jsonschema.Options{Index: ix})
	require.NoError(t, err)
	assert.True(t, validate(doc(t, `1`)).Valid)
	assert.False(t, validate(doc(t, `-1`)).Valid)
}
