// Package index turns raw schema documents into an identity-stable graph
// that the validator compiler can walk.
//
// An Index records every schema resource ($id), anchor ($anchor,
// $dynamicAnchor and legacy plain-name fragment ids) and reference of the
// documents added to it, resolves references to the very map objects they
// point to, and fetches external documents through a Retrieve function.
//
// An Index is not safe for concurrent use.
package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/schemakit/jsonschema/future"
	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/metaschemas"
)

// DefaultBaseURI is the uri of documents added without one.
const DefaultBaseURI = "mem:///schema.json"

// Retrieve fetches the document identified by uri. The returned future may
// already be settled, in which case indexing stays synchronous.
type Retrieve func(uri string) *future.Future[any]

type Config struct {
	// DefaultDialect is the meta-schema uri assumed for documents
	// without $schema.
	DefaultDialect string

	// Retrieve fetches documents that are referenced but not added.
	// Embedded meta-schemas are never retrieved.
	Retrieve Retrieve

	Logger *slog.Logger
}

// Resource is a schema resource: a document root or a subschema with an
// $id of its own.
type Resource struct {
	URI     string // absolute, without fragment
	Dialect string // meta-schema uri declared by $schema, "" if none
	Node    any
	Parent  *Resource // lexically enclosing resource, nil for document roots

	Anchors        map[string]any
	DynamicAnchors map[string]any
}

func newResource(uri, dialect string, node any, parent *Resource) *Resource {
	return &Resource{
		URI:            uri,
		Dialect:        dialect,
		Node:           node,
		Parent:         parent,
		Anchors:        map[string]any{},
		DynamicAnchors: map[string]any{},
	}
}

type Index struct {
	cfg       Config
	logger    *slog.Logger
	rootURI   string
	resources map[string]*Resource
	nodes     map[uintptr]*Resource
	refs      map[string]struct{}
}

func New(cfg Config) *Index {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Index{
		cfg:       cfg,
		logger:    logger,
		resources: map[string]*Resource{},
		nodes:     map[uintptr]*Resource{},
		refs:      map[string]struct{}{},
	}
}

// Identity returns the identity of a schema object. Two occurrences of the
// same object have the same identity, equal copies do not.
func Identity(obj map[string]any) uintptr {
	return reflect.ValueOf(obj).Pointer()
}

func sameNode(a, b any) bool {
	ma, ok1 := a.(map[string]any)
	mb, ok2 := b.(map[string]any)
	if ok1 && ok2 {
		return Identity(ma) == Identity(mb)
	}
	if ok1 || ok2 {
		return false
	}
	return a == b
}

// AddDocument indexes doc as the document identified by uri.
// An empty uri means DefaultBaseURI.
func (ix *Index) AddDocument(uri string, doc any) error {
	if uri == "" {
		uri = DefaultBaseURI
	}
	uri, frag, err := split(uri)
	if err != nil {
		return &ParseIDError{ID: uri, Err: err}
	}
	if frag != "" {
		return &ParseIDError{ID: uri, Err: fmt.Errorf("document uri must not have fragment %q", frag)}
	}
	if res, ok := ix.resources[uri]; ok {
		if sameNode(res.Node, doc) {
			return nil
		}
		return &DuplicateIDError{ID: uri}
	}

	var dialect string
	if obj, ok := doc.(map[string]any); ok {
		if s, ok := obj["$schema"].(string); ok && s != "" {
			dialect = metaschemas.Normalize(s)
		}
	}
	res := newResource(uri, dialect, doc, nil)
	ix.resources[uri] = res
	if ix.rootURI == "" {
		ix.rootURI = uri
	}
	ix.logger.Debug("indexing document", "uri", uri, "dialect", dialect)
	return ix.collect(doc, res, dialect, true)
}

func (ix *Index) collect(node any, res *Resource, dialectURI string, isRoot bool) error {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	if _, seen := ix.nodes[Identity(obj)]; seen {
		return nil
	}

	if s, ok := obj["$schema"].(string); ok && s != "" {
		dialectURI = metaschemas.Normalize(s)
		ix.refs[dialectURI] = struct{}{}
	}
	d := dialectFor(dialectURI)
	if dialectURI == "" {
		d = dialectFor(ix.cfg.DefaultDialect)
	}

	if id := d.getID(obj); id != "" {
		if !strings.HasPrefix(id, "#") {
			base, _, err := resolve(res.URI, id)
			if err != nil {
				return &ParseIDError{ID: id, Err: err}
			}
			if existing, ok := ix.resources[base]; ok && !sameNode(existing.Node, obj) {
				return &DuplicateIDError{ID: base}
			}
			if isRoot {
				res.URI = base
			} else if base != res.URI {
				res = newResource(base, dialectURI, obj, res)
			}
			ix.resources[base] = res
		}
		if _, frag, ok := strings.Cut(id, "#"); ok && frag != "" && !strings.HasPrefix(frag, "/") {
			if err := addAnchor(res, frag, obj); err != nil {
				return err
			}
		}
	}
	ix.nodes[Identity(obj)] = res

	if d.version >= 2020 {
		if s, ok := obj["$anchor"].(string); ok {
			if err := addAnchor(res, s, obj); err != nil {
				return err
			}
		}
		if s, ok := obj["$dynamicAnchor"].(string); ok {
			if err := addAnchor(res, s, obj); err != nil {
				return err
			}
			res.DynamicAnchors[s] = obj
		}
	}

	for _, kw := range []string{"$ref", "$dynamicRef"} {
		if ref, ok := obj[kw].(string); ok {
			if uri, _, err := resolve(res.URI, ref); err == nil {
				ix.refs[uri] = struct{}{}
			}
		}
	}

	return children(obj, func(v any, _ ...string) error {
		return ix.collect(v, res, dialectURI, false)
	})
}

func addAnchor(res *Resource, anchor string, obj map[string]any) error {
	if existing, ok := res.Anchors[anchor]; ok && !sameNode(existing, obj) {
		return &DuplicateAnchorError{Anchor: anchor, URI: res.URI}
	}
	res.Anchors[anchor] = obj
	return nil
}

// Resource returns the innermost resource enclosing node, or nil if node
// was never indexed.
func (ix *Index) Resource(node map[string]any) *Resource {
	return ix.nodes[Identity(node)]
}

// Lookup returns the resource identified by the absolute uri.
func (ix *Index) Lookup(uri string) (*Resource, bool) {
	res, ok := ix.resources[metaschemas.Normalize(uri)]
	return res, ok
}

// DereferenceReference resolves the $ref value ref found in from, and
// returns the schema node it points to. schemaPath is the location of the
// keyword, used in errors.
func (ix *Index) DereferenceReference(ref string, from map[string]any, schemaPath string) (any, error) {
	base := ix.rootURI
	if res := ix.Resource(from); res != nil {
		base = res.URI
	}
	uri, frag, err := resolve(base, ref)
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Location: schemaPath, Err: err}
	}
	res, err := ix.resourceFor(uri)
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Location: schemaPath, Err: err}
	}
	target, err := ix.fragment(res, frag)
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Location: schemaPath, Err: err}
	}
	ix.logger.Debug("resolved reference", "ref", ref, "location", schemaPath, "uri", uri, "fragment", frag)
	return target, nil
}

// DereferenceDynamicReference resolves $dynamicRef lexically, exactly like
// a $ref. Honoring the dynamic scope is up to the caller, which alone knows
// the resources entered during evaluation.
func (ix *Index) DereferenceDynamicReference(ref string, from map[string]any, schemaPath string) (any, error) {
	return ix.DereferenceReference(ref, from, schemaPath)
}

// MetaSchema returns the meta-schema identified by uri.
func (ix *Index) MetaSchema(uri string) (map[string]any, error) {
	res, err := ix.resourceFor(metaschemas.Normalize(uri))
	if err != nil {
		return nil, &MetaSchemaNotFoundError{URI: uri, Err: err}
	}
	obj, ok := res.Node.(map[string]any)
	if !ok {
		return nil, &MetaSchemaNotFoundError{URI: uri, Err: fmt.Errorf("not an object")}
	}
	return obj, nil
}

func (ix *Index) resourceFor(uri string) (*Resource, error) {
	if res, ok := ix.resources[uri]; ok {
		return res, nil
	}
	doc, err := ix.fetchNow(uri)
	if err != nil {
		return nil, err
	}
	if err := ix.AddDocument(uri, doc); err != nil {
		return nil, err
	}
	return ix.resources[uri], nil
}

// fetchNow loads uri without blocking: from the embedded meta-schemas, or
// through Retrieve if it yields an already settled future.
func (ix *Index) fetchNow(uri string) (any, error) {
	if metaschemas.Has(uri) {
		return metaschemas.Load(uri)
	}
	if ix.cfg.Retrieve == nil {
		return nil, &RetrievalError{URI: uri, Err: ErrNoRetrieve}
	}
	f := ix.cfg.Retrieve(uri)
	if f == nil {
		return nil, &RetrievalError{URI: uri, Err: fmt.Errorf("retrieve returned no result")}
	}
	doc, err := f.Result()
	if err != nil {
		return nil, &RetrievalError{URI: uri, Err: err}
	}
	return doc, nil
}

func (ix *Index) fragment(res *Resource, frag string) (any, error) {
	switch {
	case frag == "":
		return res.Node, nil
	case strings.HasPrefix(frag, "/"):
		target, err := jsonpointer.Lookup(res.Node, frag)
		if err != nil {
			return nil, err
		}
		// subschemas below unknown keywords are indexed on first use.
		if err := ix.collect(target, res, res.Dialect, false); err != nil {
			return nil, err
		}
		return target, nil
	default:
		if target, ok := res.Anchors[frag]; ok {
			return target, nil
		}
		return nil, &AnchorNotFoundError{URI: res.URI, Anchor: frag}
	}
}

// Missing returns the uris of referenced documents that are neither added
// nor embedded, sorted.
func (ix *Index) Missing() []string {
	var missing []string
	for uri := range ix.refs {
		if _, ok := ix.resources[uri]; ok {
			continue
		}
		if metaschemas.Has(uri) {
			continue
		}
		missing = append(missing, uri)
	}
	sort.Strings(missing)
	return missing
}

// Resolve retrieves missing documents, and the documents they reference in
// turn, until nothing is missing. Each round fetches its documents
// concurrently. The returned future is already settled if Retrieve returns
// settled futures. Without a Retrieve function, missing documents are left
// for dereferencing to report.
func (ix *Index) Resolve(ctx context.Context) *future.Future[*Index] {
	missing := ix.Missing()
	if len(missing) == 0 || ix.cfg.Retrieve == nil {
		return future.Resolved(ix)
	}
	fs := make([]*future.Future[any], len(missing))
	for i, uri := range missing {
		uri := uri
		ix.logger.Debug("retrieving document", "uri", uri)
		f := ix.cfg.Retrieve(uri)
		if f == nil {
			f = future.Rejected[any](fmt.Errorf("retrieve returned no result"))
		}
		fs[i] = future.MapErr(ctx, f, func(err error) error {
			return &RetrievalError{URI: uri, Err: err}
		})
	}
	return future.Chain(ctx, future.All(ctx, fs), func(docs []any) *future.Future[*Index] {
		for i, doc := range docs {
			if err := ix.AddDocument(missing[i], doc); err != nil {
				return future.Rejected[*Index](err)
			}
		}
		return ix.Resolve(ctx)
	})
}

// --

// resolve resolves ref against base, returning the absolute uri without
// fragment and the decoded fragment.
func resolve(base, ref string) (string, string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", "", err
	}
	if !r.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", "", err
		}
		r = b.ResolveReference(r)
	}
	frag := r.Fragment
	r.Fragment, r.RawFragment = "", ""
	return r.String(), frag, nil
}

func split(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	frag := u.Fragment
	u.Fragment, u.RawFragment = "", ""
	return u.String(), frag, nil
}
