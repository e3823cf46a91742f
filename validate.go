package jsonschema

import (
	"context"

	"github.com/schemakit/jsonschema/future"
	"github.com/schemakit/jsonschema/index"
)

// Validator evaluates an instance against a compiled schema. It is safe
// for concurrent use and does no I/O.
type Validator func(instance any) *Output

// JSONValidatorAsync compiles schema once every document it references has
// been retrieved. The returned future is already settled unless
// opts.Retrieve returns pending futures.
func (d *Draft) JSONValidatorAsync(ctx context.Context, schema any, opts *Options) *future.Future[Validator] {
	o := opts.withDefaults(d)
	if o.Index != nil {
		return future.From(compileRoot(o.Index, schema, o))
	}
	ix := index.New(index.Config{
		DefaultDialect: o.DefaultMetaSchemaURI,
		Retrieve:       o.Retrieve,
		Logger:         o.Logger,
	})
	if err := ix.AddDocument(o.BaseURI, schema); err != nil {
		return future.Rejected[Validator](&SchemaError{Err: err})
	}
	return future.Then(ctx, ix.Resolve(ctx), func(ix *index.Index) (Validator, error) {
		return compileRoot(ix, schema, o)
	})
}

// JSONValidator compiles schema, waiting for pending retrievals.
func (d *Draft) JSONValidator(schema any, opts *Options) (Validator, error) {
	return d.JSONValidatorAsync(context.Background(), schema, opts).Await(context.Background())
}

// ValidateJSON validates instance against schema. It returns a
// *ValidationError if instance is invalid.
func (d *Draft) ValidateJSON(instance, schema any, opts *Options) error {
	validate, err := d.JSONValidator(schema, opts)
	if err != nil {
		return err
	}
	out := validate(instance)
	if out.Valid {
		return nil
	}
	msg := out.Message
	if msg == "" {
		msg = "instance is invalid"
	}
	return &ValidationError{Message: msg, Output: out}
}

// IsJSONValid tells whether instance is valid against schema. It always
// evaluates fail-fast.
func (d *Draft) IsJSONValid(instance, schema any, opts *Options) (bool, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.FailFast = true
	validate, err := d.JSONValidator(schema, &o)
	if err != nil {
		return false, err
	}
	return validate(instance).Valid, nil
}

func compileRoot(ix Index, schema any, o Options) (Validator, error) {
	c := newCompiler(ix, o)
	validate, err := c.compile(schema, "")
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("compiled schema", "schemas", len(c.cache), "dialects", len(c.dialects))
	flag := c.flag
	return func(instance any) *Output {
		out := validate(instance, "", nil)
		if flag {
			return &Output{Valid: out.Valid, flag: true}
		}
		return out
	}, nil
}

// --

// JSONValidator compiles schema with Draft2020 as default dialect.
func JSONValidator(schema any, opts *Options) (Validator, error) {
	return Draft2020.JSONValidator(schema, opts)
}

// JSONValidatorAsync is like JSONValidator, without waiting for pending
// retrievals.
func JSONValidatorAsync(ctx context.Context, schema any, opts *Options) *future.Future[Validator] {
	return Draft2020.JSONValidatorAsync(ctx, schema, opts)
}

// ValidateJSON validates instance with Draft2020 as default dialect.
func ValidateJSON(instance, schema any, opts *Options) error {
	return Draft2020.ValidateJSON(instance, schema, opts)
}

// IsJSONValid tells whether instance is valid, with Draft2020 as default
// dialect.
func IsJSONValid(instance, schema any, opts *Options) (bool, error) {
	return Draft2020.IsJSONValid(instance, schema, opts)
}
