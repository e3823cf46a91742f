// Package jsonpointer implements the small subset of RFC 6901 needed to
// address schema and instance locations.
package jsonpointer

import (
	"fmt"
	"strconv"
	"strings"
)

// Escape converts token to a valid json-pointer reference token.
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// Unescape reverses Escape.
func Unescape(token string) (string, error) {
	if !strings.Contains(token, "~") {
		return token, nil
	}
	var sb strings.Builder
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if ch != '~' {
			sb.WriteByte(ch)
			continue
		}
		if i+1 == len(token) {
			return "", fmt.Errorf("jsonpointer: %q ends with ~", token)
		}
		switch token[i+1] {
		case '0':
			sb.WriteByte('~')
		case '1':
			sb.WriteByte('/')
		default:
			return "", fmt.Errorf("jsonpointer: invalid escape ~%c in %q", token[i+1], token)
		}
		i++
	}
	return sb.String(), nil
}

// Append returns ptr with the given tokens appended, escaping each of them.
func Append(ptr string, tokens ...string) string {
	for _, tok := range tokens {
		ptr += "/" + Escape(tok)
	}
	return ptr
}

// Index returns ptr with array index i appended.
func Index(ptr string, i int) string {
	return ptr + "/" + strconv.Itoa(i)
}

// Split returns the unescaped reference tokens of ptr.
func Split(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("jsonpointer: %q does not start with /", ptr)
	}
	toks := strings.Split(ptr[1:], "/")
	for i, tok := range toks {
		t, err := Unescape(tok)
		if err != nil {
			return nil, err
		}
		toks[i] = t
	}
	return toks, nil
}

// Lookup evaluates ptr against doc.
func Lookup(doc any, ptr string) (any, error) {
	toks, err := Split(ptr)
	if err != nil {
		return nil, err
	}
	v := doc
	for _, tok := range toks {
		switch cur := v.(type) {
		case map[string]any:
			next, ok := cur[tok]
			if !ok {
				return nil, fmt.Errorf("jsonpointer: %q not found", ptr)
			}
			v = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(cur) || (len(tok) > 1 && tok[0] == '0') {
				return nil, fmt.Errorf("jsonpointer: invalid index %q in %q", tok, ptr)
			}
			v = cur[i]
		default:
			return nil, fmt.Errorf("jsonpointer: %q not found", ptr)
		}
	}
	return v, nil
}
