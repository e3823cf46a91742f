package jsonschema

import (
	"fmt"

	"github.com/schemakit/jsonschema/metaschemas"
)

const (
	vocabCore             = "https://json-schema.org/draft/2020-12/vocab/core"
	vocabApplicator       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	vocabUnevaluated      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	vocabValidation       = "https://json-schema.org/draft/2020-12/vocab/validation"
	vocabMetaData         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	vocabFormatAnnotation = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	vocabFormatAssertion  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	vocabContent          = "https://json-schema.org/draft/2020-12/vocab/content"
)

// keywordCompiler compiles the keyword of obj found at sloc, the location
// of obj. It returns a nil validator when the keyword has no effect.
type keywordCompiler func(c *compiler, obj map[string]any, sloc string) (boundValidator, error)

type keyword struct {
	name    string
	vocab   string
	compile keywordCompiler
}

func keywordDefs() []*keyword {
	return []*keyword{
		{"$ref", vocabCore, compileRef},
		{"$dynamicRef", vocabCore, compileDynamicRef},

		{"type", vocabValidation, compileType},
		{"enum", vocabValidation, compileEnum},
		{"const", vocabValidation, compileConst},
		{"multipleOf", vocabValidation, compileMultipleOf},
		{"maximum", vocabValidation, compileMaximum},
		{"exclusiveMaximum", vocabValidation, compileExclusiveMaximum},
		{"minimum", vocabValidation, compileMinimum},
		{"exclusiveMinimum", vocabValidation, compileExclusiveMinimum},
		{"maxLength", vocabValidation, compileMaxLength},
		{"minLength", vocabValidation, compileMinLength},
		{"pattern", vocabValidation, compilePattern},
		{"maxItems", vocabValidation, compileMaxItems},
		{"minItems", vocabValidation, compileMinItems},
		{"uniqueItems", vocabValidation, compileUniqueItems},
		{"maxContains", vocabValidation, compileMaxContains},
		{"minContains", vocabValidation, compileMinContains},
		{"maxProperties", vocabValidation, compileMaxProperties},
		{"minProperties", vocabValidation, compileMinProperties},
		{"required", vocabValidation, compileRequired},
		{"dependentRequired", vocabValidation, compileDependentRequired},

		{"prefixItems", vocabApplicator, compilePrefixItems},
		{"items", vocabApplicator, compileItems},
		{"additionalItems", vocabApplicator, compileAdditionalItems},
		{"contains", vocabApplicator, compileContains},
		{"allOf", vocabApplicator, compileAllOf},
		{"anyOf", vocabApplicator, compileAnyOf},
		{"oneOf", vocabApplicator, compileOneOf},
		{"not", vocabApplicator, compileNot},
		{"if", vocabApplicator, compileIf},
		{"dependentSchemas", vocabApplicator, compileDependentSchemas},
		{"dependencies", vocabApplicator, compileDependencies},
		{"properties", vocabApplicator, compileProperties},
		{"patternProperties", vocabApplicator, compilePatternProperties},
		{"additionalProperties", vocabApplicator, compileAdditionalProperties},
		{"propertyNames", vocabApplicator, compilePropertyNames},

		{"format", vocabFormatAnnotation, compileFormat},

		{"contentEncoding", vocabContent, compileContentEncoding},
		{"contentMediaType", vocabContent, compileContentMediaType},
		{"contentSchema", vocabContent, compileContentSchema},

		{"unevaluatedItems", vocabUnevaluated, compileUnevaluatedItems},
		{"unevaluatedProperties", vocabUnevaluated, compileUnevaluatedProperties},
	}
}

// pick returns the keyword definitions of names, in the given order.
func pick(names ...string) []*keyword {
	defs := map[string]*keyword{}
	for _, kw := range keywordDefs() {
		defs[kw.name] = kw
	}
	kws := make([]*keyword, len(names))
	for i, name := range names {
		kw, ok := defs[name]
		if !ok {
			panic(fmt.Sprintf("jsonschema: no keyword %q", name))
		}
		kws[i] = kw
	}
	return kws
}

// --

// dialect is the keyword set of a meta-schema.
type dialect struct {
	uri      string
	draft    *Draft
	keywords []*keyword

	// assertFormat is set when the format-assertion vocabulary is in use.
	assertFormat bool
}

func (d *Draft) dialect(uri string, vocabs map[string]bool) *dialect {
	dl := &dialect{uri: uri, draft: d}
	if vocabs == nil {
		dl.keywords = d.keywords
		return dl
	}
	for _, kw := range d.keywords {
		enabled := vocabs[kw.vocab]
		if kw.vocab == vocabFormatAnnotation {
			enabled = enabled || vocabs[vocabFormatAssertion]
		}
		if enabled {
			dl.keywords = append(dl.keywords, kw)
		}
	}
	dl.assertFormat = vocabs[vocabFormatAssertion]
	return dl
}

func (d *Draft) knownVocab(uri string) bool {
	if d.version < 2020 {
		return false
	}
	return uri == vocabFormatAssertion || contains(d.defaultVocabs, uri)
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// loadDialect returns the dialect of the meta-schema uri. The dialect of
// a custom meta-schema uses the draft of the meta-schema it is based on,
// restricted to the vocabularies it declares.
func (c *compiler) loadDialect(uri string) (*dialect, error) {
	uri = metaschemas.Normalize(uri)
	if dl, ok := c.dialects[uri]; ok {
		return dl, nil
	}
	dl, err := c.newDialect(uri, map[string]bool{})
	if err != nil {
		return nil, err
	}
	c.dialects[uri] = dl
	c.logger.Debug("loaded dialect", "metaSchema", uri, "draft", dl.draft.name, "keywords", len(dl.keywords))
	return dl, nil
}

func (c *compiler) newDialect(uri string, seen map[string]bool) (*dialect, error) {
	if d := draftForURI(uri); d != nil {
		if d.version >= 2020 {
			return d.dialect(uri, vocabSet(d.defaultVocabs)), nil
		}
		return d.dialect(uri, nil), nil
	}
	if seen[uri] {
		return nil, &UnsupportedDraftError{URI: uri}
	}
	seen[uri] = true

	meta, err := c.ix.MetaSchema(uri)
	if err != nil {
		return nil, err
	}
	base := Draft2020.metaSchemaURI
	if s, ok := meta["$schema"].(string); ok && metaschemas.Normalize(s) != uri {
		base = metaschemas.Normalize(s)
	}
	parent, err := c.newDialect(base, seen)
	if err != nil {
		return nil, err
	}
	d := parent.draft
	vocabulary, ok := meta["$vocabulary"].(map[string]any)
	if !ok || d.version < 2020 {
		dl := *parent
		dl.uri = uri
		return &dl, nil
	}
	vocabs := map[string]bool{}
	for vocab, required := range vocabulary {
		if d.knownVocab(vocab) {
			vocabs[vocab] = true
			continue
		}
		if req, _ := required.(bool); req {
			return nil, &UnsupportedVocabularyError{MetaSchema: uri, Vocabulary: vocab}
		}
		c.logger.Debug("skipping unknown optional vocabulary", "metaSchema", uri, "vocabulary", vocab)
	}
	return d.dialect(uri, vocabs), nil
}

func vocabSet(vocabs []string) map[string]bool {
	set := make(map[string]bool, len(vocabs))
	for _, v := range vocabs {
		set[v] = true
	}
	return set
}
