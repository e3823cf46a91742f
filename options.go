package jsonschema

import (
	"io"
	"log/slog"

	"golang.org/x/text/message"

	"github.com/schemakit/jsonschema/formats"
	"github.com/schemakit/jsonschema/index"
	"github.com/schemakit/jsonschema/kind"
)

// Options configures compilation. A nil *Options means the zero value.
type Options struct {
	// OutputFormat defaults to FormatFlag.
	OutputFormat OutputFormat

	// FailFast stops the evaluation of a schema at its first failing
	// keyword. It is implied by FormatFlag.
	FailFast bool

	// AssertFormat makes format an assertion instead of an annotation.
	AssertFormat bool

	// AssertContent makes contentEncoding, contentMediaType and
	// contentSchema assertions instead of annotations.
	AssertContent bool

	// DefaultMetaSchemaURI is the dialect of schemas without $schema.
	// It defaults to the meta-schema of the draft.
	DefaultMetaSchemaURI string

	// BaseURI is the retrieval uri of the schema. It defaults to
	// index.DefaultBaseURI.
	BaseURI string

	// Retrieve fetches referenced documents that are not embedded
	// meta-schemas. Without it, such references fail to compile.
	Retrieve index.Retrieve

	// RegexpEngine defaults to GoRegexp.
	RegexpEngine RegexpEngine

	// Formats adds format predicates, overriding the builtin ones of
	// the same name.
	Formats map[string]formats.Func

	// Index is a schema index in which the schema was already added.
	// When set, BaseURI and Retrieve are ignored.
	Index Index

	// Logger receives debug logs of compilation. Nil discards them.
	Logger *slog.Logger

	// Printer renders failure messages. It defaults to English.
	Printer *message.Printer
}

// Index resolves references of schemas that were added to it.
// It is implemented by *index.Index.
type Index interface {
	DereferenceReference(ref string, from map[string]any, schemaPath string) (any, error)
	DereferenceDynamicReference(ref string, from map[string]any, schemaPath string) (any, error)
	Resource(node map[string]any) *index.Resource
	MetaSchema(uri string) (map[string]any, error)
}

var _ Index = (*index.Index)(nil)

func (o *Options) withDefaults(d *Draft) Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.DefaultMetaSchemaURI == "" {
		opts.DefaultMetaSchemaURI = d.metaSchemaURI
	}
	if opts.RegexpEngine == nil {
		opts.RegexpEngine = GoRegexp
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Printer == nil {
		opts.Printer = kind.DefaultPrinter
	}
	if opts.OutputFormat == FormatFlag {
		opts.FailFast = true
	}
	return opts
}
