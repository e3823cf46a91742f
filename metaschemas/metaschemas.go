// Package metaschemas embeds the official meta-schemas of the supported
// drafts so that they never have to be retrieved over the network.
package metaschemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed draft-04 draft-06 draft-07 draft
var files embed.FS

const (
	Draft04   = "http://json-schema.org/draft-04/schema"
	Draft06   = "http://json-schema.org/draft-06/schema"
	Draft07   = "http://json-schema.org/draft-07/schema"
	Draft2020 = "https://json-schema.org/draft/2020-12/schema"
)

var paths = map[string]string{
	Draft04:   "draft-04/schema.json",
	Draft06:   "draft-06/schema.json",
	Draft07:   "draft-07/schema.json",
	Draft2020: "draft/2020-12/schema.json",
}

func init() {
	for _, vocab := range []string{
		"core",
		"applicator",
		"unevaluated",
		"validation",
		"meta-data",
		"format-annotation",
		"format-assertion",
		"content",
	} {
		paths["https://json-schema.org/draft/2020-12/meta/"+vocab] = "draft/2020-12/meta/" + vocab + ".json"
	}
}

// Normalize strips the empty fragment from uri, so that
// "http://json-schema.org/draft-07/schema#" and
// "http://json-schema.org/draft-07/schema" name the same document.
func Normalize(uri string) string {
	return strings.TrimSuffix(uri, "#")
}

// Has tells whether uri names an embedded meta-schema.
func Has(uri string) bool {
	_, ok := paths[Normalize(uri)]
	return ok
}

// URIs returns the uris of all embedded meta-schemas, sorted.
func URIs() []string {
	uris := make([]string, 0, len(paths))
	for uri := range paths {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Load returns a freshly decoded copy of the meta-schema identified by uri.
// Numbers are decoded as json.Number.
func Load(uri string) (any, error) {
	p, ok := paths[Normalize(uri)]
	if !ok {
		return nil, fmt.Errorf("metaschemas: no embedded meta-schema %q", uri)
	}
	data, err := files.ReadFile(p)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("metaschemas: decoding %q: %w", uri, err)
	}
	return doc, nil
}
