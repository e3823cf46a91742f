package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/cmd/jv/internal/config"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*draftValue)(nil)
	_ pflag.Value = (*outputValue)(nil)
)

var drafts = map[string]*jsonschema.Draft{
	"4":    jsonschema.Draft4,
	"6":    jsonschema.Draft6,
	"7":    jsonschema.Draft7,
	"2020": jsonschema.Draft2020,
}

// draftValue implements pflag.Value for --draft.
type draftValue string

func (d *draftValue) String() string {
	return string(*d)
}

func (d *draftValue) Set(v string) error {
	if _, ok := drafts[v]; !ok {
		return fmt.Errorf("must be one of %s", strings.Join(config.Drafts, ", "))
	}
	*d = draftValue(v)
	return nil
}

func (d *draftValue) Type() string {
	return "<draft>"
}

func (d *draftValue) draft() *jsonschema.Draft {
	return drafts[string(*d)]
}

// outputValue implements pflag.Value for --output.
type outputValue string

func (o *outputValue) String() string {
	return string(*o)
}

func (o *outputValue) Set(v string) error {
	if !slices.Contains(config.Outputs, v) {
		return fmt.Errorf("must be one of %s", strings.Join(config.Outputs, ", "))
	}
	*o = outputValue(v)
	return nil
}

func (o *outputValue) Type() string {
	return "<format>"
}

func (o *outputValue) format() jsonschema.OutputFormat {
	if *o == "flag" {
		return jsonschema.FormatFlag
	}
	return jsonschema.FormatVerbose
}
