// Package draft2020 validates instances against JSON Schema 2020-12 schemas.
// Schemas declaring another dialect with $schema keep it.
package draft2020

import (
	"context"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/future"
)

// MetaSchemaURI is the dialect of schemas without $schema.
var MetaSchemaURI = jsonschema.Draft2020.MetaSchemaURI()

// JSONValidator compiles schema into a reusable validator.
func JSONValidator(schema any, opts *jsonschema.Options) (jsonschema.Validator, error) {
	return jsonschema.Draft2020.JSONValidator(schema, opts)
}

// JSONValidatorAsync compiles schema once all the documents it references
// are retrieved.
func JSONValidatorAsync(ctx context.Context, schema any, opts *jsonschema.Options) *future.Future[jsonschema.Validator] {
	return jsonschema.Draft2020.JSONValidatorAsync(ctx, schema, opts)
}

// ValidateJSON returns a *jsonschema.ValidationError if instance is invalid.
func ValidateJSON(instance, schema any, opts *jsonschema.Options) error {
	return jsonschema.Draft2020.ValidateJSON(instance, schema, opts)
}

// IsJSONValid tells whether instance is valid, evaluating fail-fast.
func IsJSONValid(instance, schema any, opts *jsonschema.Options) (bool, error) {
	return jsonschema.Draft2020.IsJSONValid(instance, schema, opts)
}
