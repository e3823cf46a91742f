package draft06_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/draft06"
)

func doc(t *testing.T, s string) any {
	t.Helper()
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(s))
	require.NoError(t, err)
	return v
}

func TestDraft06(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		valid    bool
	}{
		{"const match", `{"const": {"a": 1}}`, `{"a": 1.0}`, true},
		{"const mismatch", `{"const": {"a": 1}}`, `{"a": 2}`, false},
		{"contains match", `{"contains": {"minimum": 5}}`, `[1, 6]`, true},
		{"contains none", `{"contains": {"minimum": 5}}`, `[1, 2]`, false},
		{"contains empty", `{"contains": true}`, `[]`, false},
		{"exclusiveMinimum", `{"exclusiveMinimum": 1.1}`, `1.1`, false},
		{"propertyNames", `{"propertyNames": {"maxLength": 3}}`, `{"abcd": 1}`, false},
		{"boolean subschema", `{"properties": {"a": false}}`, `{"a": null}`, false},
		{"if is unknown", `{"if": false, "else": false}`, `1`, true},
		{"integer with zero fraction", `{"type": "integer"}`, `1.0`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := draft06.IsJSONValid(doc(t, tt.instance), doc(t, tt.schema), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got)
		})
	}
}

func TestMetaSchemaURI(t *testing.T) {
	assert.Equal(t, "http://json-schema.org/draft-06/schema", draft06.MetaSchemaURI)
}
