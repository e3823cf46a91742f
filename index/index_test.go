package index

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/jsonschema/future"
	"github.com/schemakit/jsonschema/metaschemas"
)

func obj(kv ...any) map[string]any {
	m := map[string]any{}
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestPlainNameFragmentID(t *testing.T) {
	t.Parallel()
	self := obj("$ref", "#r")
	root := obj("$id", "#r", "properties", obj("self", self))

	ix := New(Config{})
	require.NoError(t, ix.AddDocument("", root))

	target, err := ix.DereferenceReference("#r", self, "/properties/self/$ref")
	require.NoError(t, err)
	assert.True(t, sameNode(root, target))
}

func TestEmbeddedResources(t *testing.T) {
	t.Parallel()
	inner := obj("$id", "item.json", "$anchor", "it", "type", "string")
	ref := obj("$ref", "item.json")
	anchorRef := obj("$ref", "item.json#it")
	ptrRef := obj("$ref", "#/$defs/item")
	root := obj(
		"$id", "https://example.com/root.json",
		"$defs", obj("item", inner),
		"allOf", []any{ref, anchorRef, ptrRef},
	)

	ix := New(Config{})
	require.NoError(t, ix.AddDocument("", root))
	assert.Empty(t, ix.Missing())

	res := ix.Resource(inner)
	require.NotNil(t, res)
	assert.Equal(t, "https://example.com/item.json", res.URI)
	assert.Equal(t, "https://example.com/root.json", res.Parent.URI)

	for _, from := range []map[string]any{ref, anchorRef, ptrRef} {
		target, err := ix.DereferenceReference(from["$ref"].(string), from, "/allOf")
		require.NoError(t, err)
		assert.True(t, sameNode(inner, target), from["$ref"])
	}

	// the document is reachable both by its retrieval uri and its $id
	_, ok := ix.Lookup(DefaultBaseURI)
	assert.True(t, ok)
	_, ok = ix.Lookup("https://example.com/root.json")
	assert.True(t, ok)
}

func TestDraft4ID(t *testing.T) {
	t.Parallel()
	inner := obj("id", "#foo", "type", "integer")
	ref := obj("$ref", "#foo")
	root := obj(
		"$schema", "http://json-schema.org/draft-04/schema#",
		"definitions", obj("a", inner),
		"items", ref,
	)
	ix := New(Config{})
	require.NoError(t, ix.AddDocument("http://example.com/s.json", root))
	target, err := ix.DereferenceReference("#foo", ref, "/items/$ref")
	require.NoError(t, err)
	assert.True(t, sameNode(inner, target))
	assert.Equal(t, metaschemas.Draft04, ix.Resource(inner).Dialect)
}

func TestRefSiblingIDIgnoredBefore2020(t *testing.T) {
	t.Parallel()
	sub := obj("$id", "other.json", "$ref", "#/definitions/a")
	root := obj(
		"$schema", "http://json-schema.org/draft-07/schema#",
		"definitions", obj("a", true),
		"allOf", []any{sub},
	)
	ix := New(Config{})
	require.NoError(t, ix.AddDocument("http://example.com/s.json", root))
	assert.Equal(t, "http://example.com/s.json", ix.Resource(sub).URI)
	target, err := ix.DereferenceReference("#/definitions/a", sub, "/allOf/0/$ref")
	require.NoError(t, err)
	assert.Equal(t, true, target)
}

func TestDynamicAnchors(t *testing.T) {
	t.Parallel()
	meta := obj("$dynamicAnchor", "meta", "type", "object")
	root := obj("$id", "https://example.com/tree", "$defs", obj("node", meta))
	ix := New(Config{})
	require.NoError(t, ix.AddDocument("", root))
	res := ix.Resource(root)
	require.Contains(t, res.DynamicAnchors, "meta")
	assert.True(t, sameNode(meta, res.DynamicAnchors["meta"]))
	assert.True(t, sameNode(meta, res.Anchors["meta"]))
}

func TestPointerIntoUnknownKeyword(t *testing.T) {
	t.Parallel()
	hidden := obj("$id", "hidden.json", "type", "null")
	from := obj("$ref", "#/x-private/hidden")
	root := obj("x-private", obj("hidden", hidden), "not", from)
	ix := New(Config{})
	require.NoError(t, ix.AddDocument("https://example.com/s.json", root))
	assert.Nil(t, ix.Resource(hidden))

	target, err := ix.DereferenceReference("#/x-private/hidden", from, "/not/$ref")
	require.NoError(t, err)
	assert.True(t, sameNode(hidden, target))
	require.NotNil(t, ix.Resource(hidden))
	assert.Equal(t, "https://example.com/hidden.json", ix.Resource(hidden).URI)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	t.Run("duplicate id", func(t *testing.T) {
		root := obj("$defs", obj(
			"a", obj("$id", "https://example.com/x"),
			"b", obj("$id", "https://example.com/x"),
		))
		err := New(Config{}).AddDocument("", root)
		var want *DuplicateIDError
		assert.ErrorAs(t, err, &want)
	})
	t.Run("duplicate anchor", func(t *testing.T) {
		root := obj("$defs", obj(
			"a", obj("$anchor", "x"),
			"b", obj("$anchor", "x"),
		))
		err := New(Config{}).AddDocument("", root)
		var want *DuplicateAnchorError
		assert.ErrorAs(t, err, &want)
	})
	t.Run("anchor not found", func(t *testing.T) {
		from := obj("$ref", "#nope")
		ix := New(Config{})
		require.NoError(t, ix.AddDocument("", obj("not", from)))
		_, err := ix.DereferenceReference("#nope", from, "/not/$ref")
		var want *AnchorNotFoundError
		assert.ErrorAs(t, err, &want)
	})
	t.Run("no retrieve", func(t *testing.T) {
		from := obj("$ref", "https://example.com/missing.json")
		ix := New(Config{})
		require.NoError(t, ix.AddDocument("", obj("not", from)))
		assert.Equal(t, []string{"https://example.com/missing.json"}, ix.Missing())
		_, err := ix.DereferenceReference("https://example.com/missing.json", from, "/not/$ref")
		assert.ErrorIs(t, err, ErrNoRetrieve)
	})
}

func TestMetaSchema(t *testing.T) {
	t.Parallel()
	ix := New(Config{})
	meta, err := ix.MetaSchema(metaschemas.Draft2020 + "#")
	require.NoError(t, err)
	assert.Contains(t, meta, "$vocabulary")

	// vocabulary meta-schemas are reachable through the main one
	target, err := ix.DereferenceReference("meta/core", meta, "/allOf/0/$ref")
	require.NoError(t, err)
	assert.Equal(t, "Core vocabulary meta-schema", target.(map[string]any)["title"])

	_, err = ix.MetaSchema("https://example.com/unknown")
	var want *MetaSchemaNotFoundError
	assert.ErrorAs(t, err, &want)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	docs := map[string]any{
		"https://example.com/a.json": obj("$ref", "b.json"),
		"https://example.com/b.json": obj("type", "string"),
	}
	var calls atomic.Int32
	async := func(uri string) *future.Future[any] {
		calls.Add(1)
		return future.Go(func() (any, error) {
			doc, ok := docs[uri]
			if !ok {
				return nil, errors.New("not found")
			}
			return doc, nil
		})
	}

	t.Run("async", func(t *testing.T) {
		calls.Store(0)
		ix := New(Config{Retrieve: async})
		require.NoError(t, ix.AddDocument("", obj("$ref", "https://example.com/a.json")))
		got, err := ix.Resolve(context.Background()).Await(context.Background())
		require.NoError(t, err)
		assert.Same(t, ix, got)
		assert.Empty(t, ix.Missing())
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("sync", func(t *testing.T) {
		sync := func(uri string) *future.Future[any] {
			doc, ok := docs[uri]
			if !ok {
				return future.Rejected[any](errors.New("not found"))
			}
			return future.Resolved(doc)
		}
		ix := New(Config{Retrieve: sync})
		require.NoError(t, ix.AddDocument("", obj("$ref", "https://example.com/a.json")))
		f := ix.Resolve(context.Background())
		require.True(t, f.Ready())
		_, err := f.Result()
		require.NoError(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		ix := New(Config{Retrieve: async})
		require.NoError(t, ix.AddDocument("", obj("$ref", "https://example.com/nope.json")))
		_, err := ix.Resolve(context.Background()).Await(context.Background())
		var want *RetrievalError
		require.ErrorAs(t, err, &want)
		assert.Equal(t, "https://example.com/nope.json", want.URI)
	})
}
