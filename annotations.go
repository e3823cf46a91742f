package jsonschema

import "sort"

// AnnotationResults holds the annotations produced by successful keywords,
// keyed by keyword name.
//
// Property applicators (properties, patternProperties,
// additionalProperties, unevaluatedProperties) produce the []string of
// property names they evaluated. Item applicators (items, prefixItems,
// additionalItems, unevaluatedItems) produce either the int index of the
// last item they evaluated or true when they evaluated all remaining
// items. contains produces the []int of matching indexes.
type AnnotationResults map[string]any

// ownContains holds the indexes matched by the contains keyword of the
// schema being evaluated, apart from those reported by in-place
// applicators. minContains and maxContains read it. It is dropped before
// the schema returns its annotations.
const ownContains = "contains@own"

// evaluatedProps returns the property names claimed by property applicators.
func (a AnnotationResults) evaluatedProps() map[string]struct{} {
	set := map[string]struct{}{}
	for _, kw := range []string{"properties", "patternProperties", "additionalProperties", "unevaluatedProperties"} {
		names, _ := a[kw].([]string)
		for _, name := range names {
			set[name] = struct{}{}
		}
	}
	return set
}

// evaluatedItems reports whether all items were evaluated, and otherwise
// which indexes were.
func (a AnnotationResults) evaluatedItems() (all bool, upto int, matched map[int]struct{}) {
	upto = -1
	for _, kw := range []string{"prefixItems", "items", "additionalItems", "unevaluatedItems"} {
		switch v := a[kw].(type) {
		case bool:
			if v {
				return true, 0, nil
			}
		case int:
			upto = max(upto, v)
		}
	}
	matched = map[int]struct{}{}
	indexes, _ := a["contains"].([]int)
	for _, i := range indexes {
		matched[i] = struct{}{}
	}
	return false, upto, matched
}

// --

type reduceFunc func(a, b any) any

// reducer merges annotation results keyword by keyword. Keywords without
// an entry are overwritten by the right hand side.
type reducer map[string]reduceFunc

func newReducer(propKeywords, itemKeywords, indexKeywords []string) reducer {
	r := reducer{}
	for _, kw := range propKeywords {
		r[kw] = unionStrings
	}
	for _, kw := range itemKeywords {
		r[kw] = furthest
	}
	for _, kw := range indexKeywords {
		r[kw] = unionInts
	}
	return r
}

// merge merges src into dst, which must be owned by the caller.
func (r reducer) merge(dst, src AnnotationResults) {
	for kw, v := range src {
		if old, ok := dst[kw]; ok {
			if f, ok := r[kw]; ok {
				dst[kw] = f(old, v)
				continue
			}
		}
		dst[kw] = v
	}
}

func unionStrings(a, b any) any {
	as, _ := a.([]string)
	bs, _ := b.([]string)
	seen := make(map[string]struct{}, len(as)+len(bs))
	out := make([]string, 0, len(as)+len(bs))
	for _, list := range [][]string{as, bs} {
		for _, s := range list {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out
}

func unionInts(a, b any) any {
	as, _ := a.([]int)
	bs, _ := b.([]int)
	seen := make(map[int]struct{}, len(as)+len(bs))
	out := make([]int, 0, len(as)+len(bs))
	for _, list := range [][]int{as, bs} {
		for _, i := range list {
			if _, ok := seen[i]; !ok {
				seen[i] = struct{}{}
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)
	return out
}

// furthest keeps true over any index, and the larger of two indexes.
func furthest(a, b any) any {
	if v, ok := a.(bool); ok && v {
		return true
	}
	if v, ok := b.(bool); ok && v {
		return true
	}
	ai, aok := a.(int)
	bi, bok := b.(int)
	switch {
	case aok && bok:
		return max(ai, bi)
	case aok:
		return ai
	case bok:
		return bi
	}
	return b
}
