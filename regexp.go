package jsonschema

import (
	"regexp"

	"github.com/dlclark/regexp2"
)

// Regexp is a compiled regular expression.
type Regexp interface {
	MatchString(s string) bool
	String() string
}

// RegexpEngine compiles the regular expressions found in pattern,
// patternProperties and format "regex".
type RegexpEngine func(expr string) (Regexp, error)

// GoRegexp is the default RegexpEngine. It uses the RE2 syntax of the
// standard library, which lacks lookarounds and backreferences.
func GoRegexp(expr string) (Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}

// ECMAScriptRegexp is a RegexpEngine with the ECMA 262 dialect that
// JSON Schema specifies.
func ECMAScriptRegexp(expr string) (Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return ecmaRegexp{re}, nil
}

type ecmaRegexp struct {
	re *regexp2.Regexp
}

func (r ecmaRegexp) MatchString(s string) bool {
	matched, err := r.re.MatchString(s)
	return err == nil && matched
}

func (r ecmaRegexp) String() string {
	return r.re.String()
}
