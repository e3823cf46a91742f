// Package draft04 validates instances against JSON Schema draft-04 schemas.
// Schemas declaring another dialect with $schema keep it.
package draft04

import "github.com/schemakit/jsonschema"

// MetaSchemaURI is the dialect of schemas without $schema.
var MetaSchemaURI = jsonschema.Draft4.MetaSchemaURI()

// JSONValidator compiles schema into a reusable validator.
func JSONValidator(schema any, opts *jsonschema.Options) (jsonschema.Validator, error) {
	return jsonschema.Draft4.JSONValidator(schema, opts)
}

// ValidateJSON returns a *jsonschema.ValidationError if instance is invalid.
func ValidateJSON(instance, schema any, opts *jsonschema.Options) error {
	return jsonschema.Draft4.ValidateJSON(instance, schema, opts)
}

// IsJSONValid tells whether instance is valid, evaluating fail-fast.
func IsJSONValid(instance, schema any, opts *jsonschema.Options) (bool, error) {
	return jsonschema.Draft4.IsJSONValid(instance, schema, opts)
}
