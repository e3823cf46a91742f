package jsonschema

import (
	"github.com/schemakit/jsonschema/metaschemas"
)

// A Draft is a version of the JSON Schema specification. It determines
// the dialect of schemas that do not declare one with $schema.
type Draft struct {
	version       int
	name          string
	metaSchemaURI string
	keywords      []*keyword
	reducer       reducer

	// vocabularies of a 2020-12 meta-schema without $vocabulary.
	defaultVocabs []string
}

var (
	Draft4 = &Draft{
		version:       4,
		name:          "draft-04",
		metaSchemaURI: metaschemas.Draft04,
	}

	Draft6 = &Draft{
		version:       6,
		name:          "draft-06",
		metaSchemaURI: metaschemas.Draft06,
	}

	Draft7 = &Draft{
		version:       7,
		name:          "draft-07",
		metaSchemaURI: metaschemas.Draft07,
	}

	Draft2020 = &Draft{
		version:       2020,
		name:          "draft2020-12",
		metaSchemaURI: metaschemas.Draft2020,
		defaultVocabs: []string{vocabCore, vocabApplicator, vocabUnevaluated, vocabValidation, vocabMetaData, vocabFormatAnnotation, vocabContent},
	}

	drafts = []*Draft{Draft2020, Draft7, Draft6, Draft4}
)

func init() {
	Draft4.keywords = pick(
		"$ref",
		"type", "enum", "multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern", "maxItems", "minItems", "uniqueItems",
		"maxProperties", "minProperties", "required",
		"items", "additionalItems",
		"allOf", "anyOf", "oneOf", "not", "dependencies",
		"properties", "patternProperties", "additionalProperties",
		"format",
	)
	Draft4.reducer = newReducer(
		[]string{"properties", "patternProperties", "additionalProperties"},
		[]string{"items", "additionalItems"},
		nil,
	)

	Draft6.keywords = pick(
		"$ref",
		"type", "enum", "const", "multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern", "maxItems", "minItems", "uniqueItems",
		"maxProperties", "minProperties", "required",
		"items", "additionalItems", "contains",
		"allOf", "anyOf", "oneOf", "not", "dependencies",
		"properties", "patternProperties", "additionalProperties", "propertyNames",
		"format",
	)
	Draft6.reducer = newReducer(
		[]string{"properties", "patternProperties", "additionalProperties"},
		[]string{"items", "additionalItems"},
		[]string{"contains"},
	)

	Draft7.keywords = pick(
		"$ref",
		"type", "enum", "const", "multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern", "maxItems", "minItems", "uniqueItems",
		"maxProperties", "minProperties", "required",
		"items", "additionalItems", "contains",
		"allOf", "anyOf", "oneOf", "not", "if", "dependencies",
		"properties", "patternProperties", "additionalProperties", "propertyNames",
		"format",
		"contentEncoding", "contentMediaType",
	)
	Draft7.reducer = Draft6.reducer

	Draft2020.keywords = pick(
		"$ref", "$dynamicRef",
		"type", "enum", "const", "multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
		"maxLength", "minLength", "pattern", "maxItems", "minItems", "uniqueItems",
		"maxProperties", "minProperties", "required", "dependentRequired",
		"prefixItems", "items", "contains", "maxContains", "minContains",
		"allOf", "anyOf", "oneOf", "not", "if", "dependentSchemas",
		"properties", "patternProperties", "additionalProperties", "propertyNames",
		"format",
		"contentEncoding", "contentMediaType", "contentSchema",
		"unevaluatedItems", "unevaluatedProperties",
	)
	Draft2020.reducer = newReducer(
		[]string{"properties", "patternProperties", "additionalProperties", "unevaluatedProperties"},
		[]string{"prefixItems", "items", "additionalItems", "unevaluatedItems"},
		[]string{"contains"},
	)
}

func (d *Draft) String() string {
	return d.name
}

// MetaSchemaURI returns the uri of the meta-schema of d.
func (d *Draft) MetaSchemaURI() string {
	return d.metaSchemaURI
}

// refOnly tells whether $ref replaces its sibling keywords.
func (d *Draft) refOnly() bool {
	return d.version < 2019
}

func draftForURI(uri string) *Draft {
	uri = metaschemas.Normalize(uri)
	for _, d := range drafts {
		if d.metaSchemaURI == uri {
			return d
		}
	}
	return nil
}
