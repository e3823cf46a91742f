package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/retrieve"
)

type validator struct {
	flags  *flags
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
}

type result struct {
	name string
	out  *jsonschema.Output
	err  error
}

// toURL returns arg if it is a url, else the file url of path arg.
func toURL(arg string) (string, error) {
	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(arg, scheme) {
			return arg, nil
		}
	}
	return retrieve.ToURL(arg)
}

func (v *validator) compile(ctx context.Context, loader retrieve.URLLoader, schema string) (jsonschema.Validator, error) {
	url, err := toURL(schema)
	if err != nil {
		return nil, err
	}
	doc, err := loader.Load(url)
	if err != nil {
		return nil, err
	}
	opts := &jsonschema.Options{
		OutputFormat:  v.flags.output.format(),
		FailFast:      v.flags.failFast,
		AssertFormat:  v.flags.assertFormat,
		AssertContent: v.flags.assertContent,
		BaseURI:       url,
		Retrieve:      retrieve.Async(loader),
		Logger:        v.logger,
	}
	return v.flags.draft.draft().JSONValidatorAsync(ctx, doc, opts).Await(ctx)
}

// run validates every instance against schema. It returns errInvalid if
// an instance is invalid.
func (v *validator) run(ctx context.Context, schema string, instances []string) error {
	loader := retrieve.Default(v.flags.insecure)
	validate, err := v.compile(ctx, loader, schema)
	if err != nil {
		return fmt.Errorf("schema %s: %w", schema, err)
	}
	fmt.Fprintf(v.stdout, "schema %s: ok\n", schema)
	v.logger.Debug("compiled schema", "schema", schema, "draft", v.flags.draft.draft())

	results := make([]result, len(instances))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range instances {
		i, name := i, name
		results[i].name = name
		if name == "-" {
			// stdin is read once, before the others
			doc, err := jsonschema.UnmarshalJSON(v.stdin)
			if err != nil {
				results[i].err = err
				continue
			}
			results[i].out = validate(doc)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			url, err := toURL(name)
			if err == nil {
				var doc any
				if doc, err = loader.Load(url); err == nil {
					results[i].out = validate(doc)
				}
			}
			results[i].err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var invalid, failed int
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			v.logger.Error("reading "+r.name, "error", r.err)
		case !r.out.Valid:
			invalid++
		}
		if r.out != nil {
			if err := v.print(r); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d instances could not be read", failed, len(instances))
	}
	if invalid > 0 {
		return errInvalid
	}
	return nil
}

func (v *validator) print(r result) error {
	if v.flags.output == "json" {
		b, err := json.Marshal(struct {
			Instance string             `json:"instance"`
			Output   *jsonschema.Output `json:"output"`
		}{r.name, r.out})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(v.stdout, string(b))
		return err
	}
	if r.out.Valid {
		_, err := fmt.Fprintf(v.stdout, "instance %s: valid\n", r.name)
		return err
	}
	if r.out.IsFlag() {
		_, err := fmt.Fprintf(v.stdout, "instance %s: invalid\n", r.name)
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "instance %s: invalid", r.name)
	for _, line := range strings.Split(fmt.Sprintf("%#v", r.out), "\n") {
		sb.WriteString("\n  ")
		sb.WriteString(line)
	}
	_, err := fmt.Fprintln(v.stdout, sb.String())
	return err
}
