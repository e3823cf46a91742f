package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/schemakit/jsonschema/kind"
)

// OutputFormat selects the shape of the Output returned by a Validator.
type OutputFormat int

const (
	// FormatFlag reports validity only. It implies fail-fast evaluation
	// and never composes messages.
	FormatFlag OutputFormat = iota

	// FormatVerbose reports locations, messages and nested errors.
	FormatVerbose
)

func (f OutputFormat) String() string {
	switch f {
	case FormatFlag:
		return "flag"
	case FormatVerbose:
		return "verbose"
	}
	return fmt.Sprintf("OutputFormat(%d)", int(f))
}

// ParseOutputFormat returns the OutputFormat named s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "flag":
		return FormatFlag, nil
	case "verbose":
		return FormatVerbose, nil
	}
	return 0, fmt.Errorf("jsonschema: unknown output format %q", s)
}

// Output is the result of evaluating an instance against a schema.
//
// In flag format only Valid is meaningful. In verbose format a valid
// output carries the annotations collected at SchemaLocation, and an
// invalid output carries Message and, for composite failures, the
// nested Errors.
type Output struct {
	Valid            bool
	SchemaLocation   string
	SchemaKeyword    string
	InstanceLocation string
	Message          string
	Errors           []*Output
	Annotations      AnnotationResults

	// Kind describes the failure, nil for valid outputs. Several
	// failures of one schema are grouped under kind.Group.
	Kind kind.Kind

	flag bool
}

// IsFlag tells whether o was produced in flag format.
func (o *Output) IsFlag() bool {
	return o.flag
}

type verboseOutput struct {
	Valid            bool              `json:"valid"`
	SchemaLocation   string            `json:"schemaLocation"`
	SchemaKeyword    string            `json:"schemaKeyword,omitempty"`
	InstanceLocation string            `json:"instanceLocation"`
	Message          string            `json:"message,omitempty"`
	Errors           []*Output         `json:"errors,omitempty"`
	Annotations      AnnotationResults `json:"annotationResults,omitempty"`
}

// MarshalJSON encodes flag outputs as {"valid":bool} and verbose outputs
// with all their fields.
func (o *Output) MarshalJSON() ([]byte, error) {
	if o.flag {
		return json.Marshal(struct {
			Valid bool `json:"valid"`
		}{o.Valid})
	}
	return json.Marshal(verboseOutput{
		Valid:            o.Valid,
		SchemaLocation:   o.SchemaLocation,
		SchemaKeyword:    o.SchemaKeyword,
		InstanceLocation: o.InstanceLocation,
		Message:          o.Message,
		Errors:           o.Errors,
		Annotations:      o.Annotations,
	})
}

func (o *Output) String() string {
	if o.Valid {
		return "valid"
	}
	if o.flag {
		return "invalid"
	}
	loc := o.SchemaLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("I[%s] S[%s] %s", o.InstanceLocation, loc, o.Message)
}

// GoString renders o with its nested errors as an indented tree.
func (o *Output) GoString() string {
	msg := o.String()
	for _, c := range o.Errors {
		for _, line := range strings.Split(c.GoString(), "\n") {
			msg += "\n  " + line
		}
	}
	return msg
}

// Leaves returns the invalid outputs of o that have no nested errors.
func (o *Output) Leaves() []*Output {
	if o.Valid {
		return nil
	}
	if len(o.Errors) == 0 {
		return []*Output{o}
	}
	var leaves []*Output
	for _, c := range o.Errors {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// --

var (
	flagValid   = &Output{Valid: true, flag: true}
	flagInvalid = &Output{Valid: false, flag: true}
)

func (c *compiler) valid(sloc, keyword, vloc string, ann AnnotationResults) *Output {
	if c.flag {
		if len(ann) == 0 {
			return flagValid
		}
		return &Output{Valid: true, Annotations: ann, flag: true}
	}
	return &Output{
		Valid:            true,
		SchemaLocation:   sloc,
		SchemaKeyword:    keyword,
		InstanceLocation: vloc,
		Annotations:      ann,
	}
}

func (c *compiler) invalid(sloc, keyword, vloc string, k kind.Kind, causes ...*Output) *Output {
	if c.flag {
		return flagInvalid
	}
	return &Output{
		SchemaLocation:   sloc,
		SchemaKeyword:    keyword,
		InstanceLocation: vloc,
		Message:          k.LocalizedString(c.printer),
		Errors:           causes,
		Kind:             k,
	}
}

// group combines the failures of one schema node.
func (c *compiler) group(sloc, vloc string, failures []*Output) *Output {
	if c.flag {
		return flagInvalid
	}
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Message
	}
	return &Output{
		SchemaLocation:   sloc,
		InstanceLocation: vloc,
		Message:          strings.Join(msgs, "; "),
		Errors:           failures,
		Kind:             &kind.Group{},
	}
}
