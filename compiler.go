package jsonschema

import (
	"errors"
	"log/slog"

	"golang.org/x/text/message"

	"github.com/schemakit/jsonschema/formats"
	"github.com/schemakit/jsonschema/index"
	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
	"github.com/schemakit/jsonschema/metaschemas"
)

// boundValidator evaluates instance v found at vloc. acc holds the
// annotations of the keywords evaluated before it in the same schema.
type boundValidator func(v any, vloc string, acc AnnotationResults) *Output

// frame is a schema being compiled.
type frame struct {
	id       uintptr
	sloc     string
	dialect  *dialect
	resource *index.Resource

	// inPlace is set when the schema applies to the same instance as the
	// schema below it in frames.
	inPlace bool

	// dynamic is set when the compiled validator depends on the dynamic
	// scope, so it must not outlive this compilation.
	dynamic bool

	// mark is the position of the schema in compiled.
	mark int
}

// compiler turns schema nodes into validators. It is created for one
// root schema and discarded afterwards.
type compiler struct {
	ix             Index
	defaultDialect string
	failFast       bool
	flag           bool
	assertFormat   bool
	assertContent  bool
	formats        map[string]formats.Func
	regexpEngine   RegexpEngine
	printer        *message.Printer
	logger         *slog.Logger

	cache    map[uintptr]boundValidator
	compiled []uintptr // cache keys in compilation order
	frames   []*frame
	scope    []*index.Resource // dynamic scope
	dialects map[string]*dialect

	// inPlace is consumed by the next call to compile.
	inPlace bool
}

func newCompiler(ix Index, opts Options) *compiler {
	return &compiler{
		ix:             ix,
		defaultDialect: metaschemas.Normalize(opts.DefaultMetaSchemaURI),
		failFast:       opts.FailFast || opts.OutputFormat == FormatFlag,
		flag:           opts.OutputFormat == FormatFlag,
		assertFormat:   opts.AssertFormat,
		assertContent:  opts.AssertContent,
		formats:        opts.Formats,
		regexpEngine:   opts.RegexpEngine,
		printer:        opts.Printer,
		logger:         opts.Logger,
		cache:          map[uintptr]boundValidator{},
		dialects:       map[string]*dialect{},
	}
}

func (c *compiler) top() *frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// draft returns the draft of the schema being compiled.
func (c *compiler) draft() *Draft {
	return c.top().dialect.draft
}

// compile returns the validator of the schema node found at sloc.
func (c *compiler) compile(node any, sloc string) (boundValidator, error) {
	inPlace := c.inPlace
	c.inPlace = false
	switch n := node.(type) {
	case bool:
		if n {
			return func(v any, vloc string, _ AnnotationResults) *Output {
				return c.valid(sloc, "", vloc, nil)
			}, nil
		}
		return func(v any, vloc string, _ AnnotationResults) *Output {
			return c.invalid(sloc, "", vloc, &kind.FalseSchema{})
		}, nil
	case map[string]any:
		return c.compileObject(n, sloc, inPlace)
	}
	return nil, &SchemaError{
		SchemaLocation: sloc,
		Err:            &InvalidKeywordError{Keyword: "schema", Value: node, Reason: "must be object or boolean"},
	}
}

func (c *compiler) compileObject(obj map[string]any, sloc string, inPlace bool) (boundValidator, error) {
	id := index.Identity(obj)
	if validate, ok := c.cache[id]; ok {
		if inPlace {
			if err := c.checkLoop(id, sloc); err != nil {
				return nil, err
			}
		}
		return validate, nil
	}

	// the cell lets cyclic references see this schema before it is built.
	var indirect boundValidator
	cell := func(v any, vloc string, acc AnnotationResults) *Output {
		return indirect(v, vloc, acc)
	}
	c.cache[id] = cell
	c.compiled = append(c.compiled, id)

	parent := c.top()
	res := c.ix.Resource(obj)
	if res == nil && parent != nil {
		res = parent.resource
	}
	dl, err := c.dialectOf(obj, res, parent)
	if err != nil {
		return nil, &SchemaError{SchemaLocation: sloc, Err: err}
	}
	f := &frame{id: id, sloc: sloc, dialect: dl, resource: res, inPlace: inPlace, mark: len(c.compiled) - 1}
	c.frames = append(c.frames, f)
	enterScope := res != nil && (parent == nil || parent.resource != res)
	if enterScope {
		c.scope = append(c.scope, res)
	}

	validators, err := c.compileKeywords(obj, sloc, dl)
	if err != nil {
		return nil, err
	}
	indirect = c.aggregate(validators, sloc, dl.draft.reducer)

	c.frames = c.frames[:len(c.frames)-1]
	if enterScope {
		c.scope = c.scope[:len(c.scope)-1]
	}
	if f.dynamic {
		for _, key := range c.compiled[f.mark:] {
			delete(c.cache, key)
		}
		c.logger.Debug("evicted dynamic schema", "location", sloc, "schemas", len(c.compiled)-f.mark)
		c.compiled = c.compiled[:f.mark]
		if parent != nil {
			parent.dynamic = true
		}
	}
	return cell, nil
}

// dialectOf resolves the dialect of obj: its own $schema, else the $schema
// of its resource, else that of the referring schema, else the default.
func (c *compiler) dialectOf(obj map[string]any, res *index.Resource, parent *frame) (*dialect, error) {
	if s, ok := obj["$schema"].(string); ok && s != "" {
		return c.loadDialect(s)
	}
	if res != nil && res.Dialect != "" {
		return c.loadDialect(res.Dialect)
	}
	if parent != nil {
		return parent.dialect, nil
	}
	return c.loadDialect(c.defaultDialect)
}

func (c *compiler) compileKeywords(obj map[string]any, sloc string, dl *dialect) ([]boundValidator, error) {
	_, hasRef := obj["$ref"]
	refOnly := hasRef && dl.draft.refOnly()
	var validators []boundValidator
	for _, kw := range dl.keywords {
		if _, ok := obj[kw.name]; !ok {
			continue
		}
		if refOnly && kw.name != "$ref" {
			continue
		}
		validate, err := kw.compile(c, obj, sloc)
		if err != nil {
			var serr *SchemaError
			if errors.As(err, &serr) {
				return nil, err
			}
			return nil, &SchemaError{SchemaLocation: jsonpointer.Append(sloc, kw.name), Err: err}
		}
		if validate != nil {
			validators = append(validators, validate)
		}
	}
	return validators, nil
}

// aggregate evaluates the keyword validators of one schema in order,
// feeding each the annotations of the ones before it.
func (c *compiler) aggregate(validators []boundValidator, sloc string, r reducer) boundValidator {
	return func(v any, vloc string, _ AnnotationResults) *Output {
		acc := AnnotationResults{}
		var failures []*Output
		for _, validate := range validators {
			out := validate(v, vloc, acc)
			if !out.Valid {
				if c.failFast {
					return out
				}
				failures = append(failures, out)
				continue
			}
			r.merge(acc, out.Annotations)
		}
		switch len(failures) {
		case 0:
			delete(acc, ownContains)
			return c.valid(sloc, "", vloc, acc)
		case 1:
			return failures[0]
		}
		return c.group(sloc, vloc, failures)
	}
}

// markDynamic records that the schema being compiled depends on the
// dynamic scope.
func (c *compiler) markDynamic() {
	if f := c.top(); f != nil {
		f.dynamic = true
	}
}

// compileSub compiles the subschema found under keyword of obj.
func (c *compiler) compileSub(node any, sloc string, tokens ...string) (boundValidator, error) {
	return c.compile(node, jsonpointer.Append(sloc, tokens...))
}

// compileInPlace compiles a subschema that applies to the instance of the
// schema being compiled, like those of $ref and allOf.
func (c *compiler) compileInPlace(node any, sloc string, tokens ...string) (boundValidator, error) {
	c.inPlace = true
	return c.compile(node, jsonpointer.Append(sloc, tokens...))
}

// checkLoop fails if the schema id, reached in place from the schema
// being compiled, is still being compiled through a chain of in-place
// subschemas. Evaluating it would never return.
func (c *compiler) checkLoop(id uintptr, sloc string) error {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		if f.id == id {
			c.logger.Debug("detected infinite loop", "location", sloc, "schema", f.sloc)
			return &SchemaError{SchemaLocation: sloc, Err: &InfiniteLoopError{SchemaLocation: f.sloc, Via: sloc}}
		}
		if !f.inPlace {
			return nil
		}
	}
	return nil
}

func (c *compiler) compileRegexp(keyword, expr string) (Regexp, error) {
	re, err := c.regexpEngine(expr)
	if err != nil {
		return nil, &InvalidRegexError{Keyword: keyword, Regex: expr, Err: err}
	}
	return re, nil
}
