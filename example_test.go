package jsonschema_test

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/formats"
)

func Example() {
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`))
	if err != nil {
		log.Fatal(err)
	}
	validate, err := jsonschema.JSONValidator(schema, &jsonschema.Options{
		OutputFormat: jsonschema.FormatVerbose,
	})
	if err != nil {
		log.Fatalf("%#v", err)
	}

	out := validate(map[string]any{})
	fmt.Println(out.Valid, out.Message)
	out = validate(map[string]any{"name": "Joan"})
	fmt.Println(out.Valid)
	// Output:
	// false missing property 'name'
	// true
}

// Example_flag shows the default output format.
func Example_flag() {
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"minItems": 2}`))
	if err != nil {
		log.Fatal(err)
	}
	validate, err := jsonschema.JSONValidator(schema, nil)
	if err != nil {
		log.Fatalf("%#v", err)
	}
	b, _ := json.Marshal(validate([]any{1}))
	fmt.Println(string(b))
	// Output:
	// {"valid":false}
}

// Example_userDefinedFormat shows how to define 'odd-length' format.
func Example_userDefinedFormat() {
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(`{"format": "odd-length"}`))
	if err != nil {
		log.Fatal(err)
	}
	ok, err := jsonschema.IsJSONValid("abcd", schema, &jsonschema.Options{
		AssertFormat: true,
		Formats: map[string]formats.Func{
			"odd-length": func(s string) error {
				if len(s)%2 == 0 {
					return fmt.Errorf("length %d is even", len(s))
				}
				return nil
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(ok)
	// Output:
	// false
}
