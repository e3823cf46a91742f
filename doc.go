/*
Package jsonschema compiles JSON Schema documents of drafts 4, 6, 7 and
2020-12 into validators.

A schema is compiled once into a Validator, a plain function that can be
called concurrently on any number of instances:

	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`))
	if err != nil {
		return err
	}
	validate, err := jsonschema.JSONValidator(schema, &jsonschema.Options{
		OutputFormat: jsonschema.FormatVerbose,
	})
	if err != nil {
		return err
	}
	out := validate(map[string]any{})
	fmt.Println(out.Valid, out.Message) // false missing property 'name'

Schemas and instances use the data model of encoding/json. Decode them
with UnmarshalJSON to keep numbers exact.

The dialect of a schema is taken from its $schema, else from
Options.DefaultMetaSchemaURI, else from the Draft used. Meta-schemas of
the supported drafts are embedded. Other referenced documents are
fetched through Options.Retrieve; see package retrieve.

Output comes in two formats. FormatFlag, the default, reports validity
only and stops at the first failure. FormatVerbose reports schema and
instance locations, messages and nested errors.
*/
package jsonschema
