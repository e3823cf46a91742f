package jsonpointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"name", "name"},
		{"a/b", "a~1b"},
		{"m~n", "m~0n"},
		{"~/", "~0~1"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Escape(test.in))
		got, err := Unescape(test.want)
		require.NoError(t, err)
		assert.Equal(t, test.in, got)
	}
}

func TestUnescapeInvalid(t *testing.T) {
	for _, tok := range []string{"a~", "a~2"} {
		_, err := Unescape(tok)
		assert.Error(t, err, tok)
	}
}

func TestAppend(t *testing.T) {
	assert.Equal(t, "/properties/a~1b", Append("", "properties", "a/b"))
	assert.Equal(t, "/items/3", Index("/items", 3))
}

func TestLookup(t *testing.T) {
	doc := map[string]any{
		"$defs": map[string]any{
			"a/b": map[string]any{"type": "string"},
		},
		"allOf": []any{true, false},
	}
	v, err := Lookup(doc, "/$defs/a~1b/type")
	require.NoError(t, err)
	assert.Equal(t, "string", v)

	v, err = Lookup(doc, "/allOf/1")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = Lookup(doc, "")
	require.NoError(t, err)
	assert.Equal(t, doc, v)

	for _, ptr := range []string{"/allOf/2", "/allOf/01", "/missing", "$defs", "/allOf/0/x"} {
		_, err := Lookup(doc, ptr)
		assert.Error(t, err, ptr)
	}
}
