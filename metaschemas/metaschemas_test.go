package metaschemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()
	for _, uri := range URIs() {
		doc, err := Load(uri)
		require.NoError(t, err, uri)
		obj, ok := doc.(map[string]any)
		require.True(t, ok, uri)

		id, _ := obj["$id"].(string)
		if id == "" {
			id, _ = obj["id"].(string)
		}
		assert.Equal(t, uri, Normalize(id))
	}
}

func TestLoadWithFragment(t *testing.T) {
	t.Parallel()
	assert.True(t, Has(Draft07+"#"))
	doc, err := Load(Draft04 + "#")
	require.NoError(t, err)
	assert.Contains(t, doc, "definitions")
}

func TestLoadUnknown(t *testing.T) {
	t.Parallel()
	assert.False(t, Has("https://example.com/schema"))
	_, err := Load("https://example.com/schema")
	assert.Error(t, err)
}

func TestVocabularies(t *testing.T) {
	t.Parallel()
	doc, err := Load(Draft2020)
	require.NoError(t, err)
	vocabs := doc.(map[string]any)["$vocabulary"].(map[string]any)
	assert.Len(t, vocabs, 7)
	assert.NotContains(t, vocabs, "https://json-schema.org/draft/2020-12/vocab/format-assertion")
}
