package index

import (
	"strconv"

	"github.com/schemakit/jsonschema/metaschemas"
)

type position uint

const (
	posSelf position = 1 << iota
	posProp
	posItem
)

// subschemas lists where subschemas can appear, for every supported draft.
// Keywords unknown to a draft are walked anyway so that a node compiled under
// a different dialect than the one it was indexed with is still found.
var subschemas = map[string]position{
	// type agnostic
	"definitions": posProp,
	"$defs":       posProp,
	"not":         posSelf,
	"allOf":       posItem,
	"anyOf":       posItem,
	"oneOf":       posItem,
	"if":          posSelf,
	"then":        posSelf,
	"else":        posSelf,
	// object
	"properties":            posProp,
	"additionalProperties":  posSelf,
	"patternProperties":     posProp,
	"propertyNames":         posSelf,
	"dependencies":          posProp,
	"dependentSchemas":      posProp,
	"unevaluatedProperties": posSelf,
	// array
	"items":            posSelf | posItem,
	"prefixItems":      posItem,
	"additionalItems":  posSelf,
	"contains":         posSelf,
	"unevaluatedItems": posSelf,
	// content
	"contentSchema": posSelf,
}

type dialect struct {
	version int
	id      string // property name used to represent id
}

var (
	draft4    = &dialect{4, "id"}
	draft6    = &dialect{6, "$id"}
	draft7    = &dialect{7, "$id"}
	draft2020 = &dialect{2020, "$id"}
)

// dialectFor returns the dialect for the meta-schema uri. Unknown
// meta-schemas are treated as 2020-12 dialects.
func dialectFor(uri string) *dialect {
	switch metaschemas.Normalize(uri) {
	case metaschemas.Draft04:
		return draft4
	case metaschemas.Draft06:
		return draft6
	case metaschemas.Draft07:
		return draft7
	default:
		return draft2020
	}
}

func (d *dialect) getID(obj map[string]any) string {
	if d.version < 2020 {
		if _, ok := obj["$ref"]; ok {
			// All other properties in a "$ref" object MUST be ignored
			return ""
		}
	}
	id, _ := obj[d.id].(string)
	return id
}

// children calls fn for each subschema of obj, with the json-pointer tokens
// leading to it.
func children(obj map[string]any, fn func(v any, tokens ...string) error) error {
	for kw, pos := range subschemas {
		v, ok := obj[kw]
		if !ok {
			continue
		}
		if pos&posSelf != 0 {
			switch v.(type) {
			case bool, map[string]any:
				if err := fn(v, kw); err != nil {
					return err
				}
			}
		}
		if pos&posItem != 0 {
			if arr, ok := v.([]any); ok {
				for i, item := range arr {
					if err := fn(item, kw, strconv.Itoa(i)); err != nil {
						return err
					}
				}
			}
		}
		if pos&posProp != 0 {
			if props, ok := v.(map[string]any); ok {
				for pname, pvalue := range props {
					if err := fn(pvalue, kw, pname); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
