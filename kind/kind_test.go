package kind

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{&FalseSchema{}, "expected no value"},
		{&Required{Missing: []string{"name"}}, "missing property 'name'"},
		{&Required{Missing: []string{"a", "b"}}, "missing properties 'a', 'b'"},
		{&Type{Got: "string", Want: []string{"object", "null"}}, "got string, want object or null"},
		{&Enum{Want: []any{"red", 1.5, nil}}, "value must be one of 'red', 1.5, null"},
		{&Enum{Want: []any{map[string]any{}}}, "value must be one of the enumerated values"},
		{&Const{Want: "x"}, "value must be 'x'"},
		{&Minimum{Got: big.NewRat(1, 2), Want: big.NewRat(1, 1)}, "minimum: got 0.5, want 1"},
		{&MinContains{Got: []int{0}, Want: 2}, "min 2 items required to match contains schema, but matched 1 items at 0"},
		{&OneOf{Subschemas: []int{0, 2}}, "oneOf failed, subschemas 0, 2 matched"},
		{&UnevaluatedProperties{Properties: []string{"b"}}, "unevaluated properties 'b' not allowed"},
		{&Pattern{Got: "it's", Want: "^a"}, `'it\'s' does not match pattern '^a'`},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, String(test.kind))
	}
}

func TestKeywordPath(t *testing.T) {
	assert.Nil(t, (&FalseSchema{}).KeywordPath())
	assert.Equal(t, []string{"dependentRequired", "a"}, (&DependentRequired{Prop: "a"}).KeywordPath())
	assert.Equal(t, []string{"else"}, (&IfThenElse{Branch: "else"}).KeywordPath())
}

func TestLocalized(t *testing.T) {
	err := message.SetString(language.Dutch, "missing property %s", "ontbrekende eigenschap %s")
	assert.NoError(t, err)
	p := message.NewPrinter(language.Dutch)
	assert.Equal(t, "ontbrekende eigenschap 'name'", (&Required{Missing: []string{"name"}}).LocalizedString(p))
}
