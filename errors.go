package jsonschema

import (
	"fmt"
	"strings"
)

// SchemaError is returned when a schema cannot be compiled.
type SchemaError struct {
	// SchemaLocation is the location of the offending keyword,
	// relative to the root schema.
	SchemaLocation string

	Err error
}

func (e *SchemaError) Error() string {
	loc := e.SchemaLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("jsonschema: invalid schema at %s: %v", loc, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// InfiniteLoopError is returned when the schema at SchemaLocation applies
// itself to the same instance, through $ref or in-place applicators,
// with the keyword at Via closing the loop.
type InfiniteLoopError struct {
	SchemaLocation string
	Via            string
}

func (e *InfiniteLoopError) Error() string {
	loc := e.SchemaLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("infinite loop: %s leads back to %s", e.Via, loc)
}

// --

type InvalidKeywordError struct {
	Keyword string
	Value   any
	Reason  string
}

func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Keyword, display(e.Value), e.Reason)
}

func display(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%v", v)
}

// --

type InvalidRegexError struct {
	Keyword string
	Regex   string
	Err     error
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex %q in %s: %v", e.Regex, e.Keyword, e.Err)
}

func (e *InvalidRegexError) Unwrap() error {
	return e.Err
}

// --

type UnsupportedVocabularyError struct {
	MetaSchema string
	Vocabulary string
}

func (e *UnsupportedVocabularyError) Error() string {
	return fmt.Sprintf("unsupported required vocabulary %q in meta-schema %q", e.Vocabulary, e.MetaSchema)
}

// --

// UnsupportedDraftError is returned when a meta-schema, directly or
// through the meta-schemas it is based on, names no known draft.
type UnsupportedDraftError struct {
	URI string
}

func (e *UnsupportedDraftError) Error() string {
	return fmt.Sprintf("meta-schema %q is not based on a supported draft", e.URI)
}

// --

// ValidationError is returned by ValidateJSON for invalid instances.
type ValidationError struct {
	Message string
	Output  *Output
}

func (e *ValidationError) Error() string {
	return "jsonschema: validation failed: " + e.Message
}

// GoString renders the failures as an indented tree.
func (e *ValidationError) GoString() string {
	if e.Output == nil || e.Output.flag {
		return e.Error()
	}
	var sb strings.Builder
	sb.WriteString("jsonschema: validation failed")
	for _, line := range strings.Split(e.Output.GoString(), "\n") {
		sb.WriteString("\n  ")
		sb.WriteString(line)
	}
	return sb.String()
}
