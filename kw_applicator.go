package jsonschema

import (
	"sort"
	"strconv"

	"github.com/schemakit/jsonschema/internal/jsonpointer"
	"github.com/schemakit/jsonschema/kind"
)

func compileSchemaList(c *compiler, obj map[string]any, sloc, keyword string, inPlace bool) ([]boundValidator, error) {
	arr, ok := obj[keyword].([]any)
	if !ok || len(arr) == 0 {
		return nil, &InvalidKeywordError{Keyword: keyword, Value: obj[keyword], Reason: "must be a non-empty array"}
	}
	validators := make([]boundValidator, len(arr))
	compile := c.compileSub
	if inPlace {
		compile = c.compileInPlace
	}
	for i, sub := range arr {
		validate, err := compile(sub, sloc, keyword, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		validators[i] = validate
	}
	return validators, nil
}

func compileSchemaMap(c *compiler, obj map[string]any, sloc, keyword string) (map[string]boundValidator, []string, error) {
	m, ok := obj[keyword].(map[string]any)
	if !ok {
		return nil, nil, &InvalidKeywordError{Keyword: keyword, Value: obj[keyword], Reason: "must be an object"}
	}
	validators := make(map[string]boundValidator, len(m))
	names := sortedKeys(m)
	for _, name := range names {
		validate, err := c.compileSub(m[name], sloc, keyword, name)
		if err != nil {
			return nil, nil, err
		}
		validators[name] = validate
	}
	return validators, names, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sequence evaluates validators of one keyword in order, merging their
// annotations.
func (c *compiler) sequence(kwloc, keyword string, r reducer, validators ...boundValidator) boundValidator {
	return func(v any, vloc string, acc AnnotationResults) *Output {
		ann := AnnotationResults{}
		var failures []*Output
		for _, validate := range validators {
			out := validate(v, vloc, acc)
			if !out.Valid {
				if c.failFast {
					return out
				}
				failures = append(failures, out)
				continue
			}
			r.merge(ann, out.Annotations)
		}
		switch len(failures) {
		case 0:
			return c.valid(kwloc, keyword, vloc, ann)
		case 1:
			return failures[0]
		}
		return c.group(kwloc, vloc, failures)
	}
}

// --

func compileAllOf(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, err := compileSchemaList(c, obj, sloc, "allOf", true)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "allOf")
	r := c.draft().reducer
	return func(v any, vloc string, _ AnnotationResults) *Output {
		ann := AnnotationResults{}
		var failed []int
		var causes []*Output
		for i, validate := range subs {
			out := validate(v, vloc, nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "allOf", vloc, &kind.AllOf{Failed: []int{i}}, out)
				}
				failed = append(failed, i)
				causes = append(causes, out)
				continue
			}
			r.merge(ann, out.Annotations)
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, "allOf", vloc, &kind.AllOf{Failed: failed}, causes...)
		}
		return c.valid(kwloc, "allOf", vloc, ann)
	}, nil
}

// compileAnyOf evaluates every subschema, since each valid one
// contributes annotations.
func compileAnyOf(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, err := compileSchemaList(c, obj, sloc, "anyOf", true)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "anyOf")
	r := c.draft().reducer
	return func(v any, vloc string, _ AnnotationResults) *Output {
		ann := AnnotationResults{}
		matched := false
		var causes []*Output
		for _, validate := range subs {
			out := validate(v, vloc, nil)
			if out.Valid {
				matched = true
				r.merge(ann, out.Annotations)
			} else if !c.flag {
				causes = append(causes, out)
			}
		}
		if !matched {
			return c.invalid(kwloc, "anyOf", vloc, &kind.AnyOf{}, causes...)
		}
		return c.valid(kwloc, "anyOf", vloc, ann)
	}, nil
}

func compileOneOf(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, err := compileSchemaList(c, obj, sloc, "oneOf", true)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "oneOf")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		var matched []int
		var ann AnnotationResults
		var causes []*Output
		for i, validate := range subs {
			out := validate(v, vloc, nil)
			if !out.Valid {
				if !c.flag {
					causes = append(causes, out)
				}
				continue
			}
			matched = append(matched, i)
			if len(matched) > 1 {
				return c.invalid(kwloc, "oneOf", vloc, &kind.OneOf{Subschemas: matched})
			}
			ann = out.Annotations
		}
		if len(matched) == 0 {
			return c.invalid(kwloc, "oneOf", vloc, &kind.OneOf{}, causes...)
		}
		return c.valid(kwloc, "oneOf", vloc, ann)
	}, nil
}

func compileNot(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileInPlace(obj["not"], sloc, "not")
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "not")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		if validate(v, vloc, nil).Valid {
			return c.invalid(kwloc, "not", vloc, &kind.Not{})
		}
		return c.valid(kwloc, "not", vloc, nil)
	}, nil
}

// compileIf also compiles then and else, which have no effect on their own.
func compileIf(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	ifv, err := c.compileInPlace(obj["if"], sloc, "if")
	if err != nil {
		return nil, err
	}
	var thenv, elsev boundValidator
	if sub, ok := obj["then"]; ok {
		if thenv, err = c.compileSub(sub, sloc, "then"); err != nil {
			return nil, err
		}
	}
	if sub, ok := obj["else"]; ok {
		if elsev, err = c.compileSub(sub, sloc, "else"); err != nil {
			return nil, err
		}
	}
	kwloc := jsonpointer.Append(sloc, "if")
	r := c.draft().reducer
	return func(v any, vloc string, _ AnnotationResults) *Output {
		out := ifv(v, vloc, nil)
		if out.Valid {
			if thenv == nil {
				return c.valid(kwloc, "if", vloc, out.Annotations)
			}
			t := thenv(v, vloc, nil)
			if !t.Valid {
				return c.invalid(jsonpointer.Append(sloc, "then"), "then", vloc, &kind.IfThenElse{Branch: "then"}, t)
			}
			ann := AnnotationResults{}
			r.merge(ann, out.Annotations)
			r.merge(ann, t.Annotations)
			return c.valid(kwloc, "if", vloc, ann)
		}
		if elsev == nil {
			return c.valid(kwloc, "if", vloc, nil)
		}
		e := elsev(v, vloc, nil)
		if !e.Valid {
			return c.invalid(jsonpointer.Append(sloc, "else"), "else", vloc, &kind.IfThenElse{Branch: "else"}, e)
		}
		return c.valid(kwloc, "if", vloc, e.Annotations)
	}, nil
}

// --

func compileDependentSchemas(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, props, err := compileSchemaMap(c, obj, sloc, "dependentSchemas")
	if err != nil {
		return nil, err
	}
	return c.dependentSchemasValidator(jsonpointer.Append(sloc, "dependentSchemas"), "dependentSchemas", props, subs), nil
}

func (c *compiler) dependentSchemasValidator(kwloc, keyword string, props []string, subs map[string]boundValidator) boundValidator {
	r := c.draft().reducer
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		ann := AnnotationResults{}
		var failed []string
		var causes []*Output
		for _, prop := range props {
			if _, ok := m[prop]; !ok {
				continue
			}
			out := subs[prop](v, vloc, nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, keyword, vloc, &kind.DependentSchemas{Props: []string{prop}}, out)
				}
				failed = append(failed, prop)
				causes = append(causes, out)
				continue
			}
			r.merge(ann, out.Annotations)
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, keyword, vloc, &kind.DependentSchemas{Props: failed}, causes...)
		}
		return c.valid(kwloc, keyword, vloc, ann)
	}
}

// compileDependencies compiles the predecessor of dependentRequired and
// dependentSchemas, which takes both forms.
func compileDependencies(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	deps, ok := obj["dependencies"].(map[string]any)
	if !ok {
		return nil, &InvalidKeywordError{Keyword: "dependencies", Value: obj["dependencies"], Reason: "must be an object"}
	}
	kwloc := jsonpointer.Append(sloc, "dependencies")
	required := map[string][]string{}
	subs := map[string]boundValidator{}
	var props []string
	for _, prop := range sortedKeys(deps) {
		if arr, ok := deps[prop].([]any); ok {
			names, ok := stringsOf(arr)
			if !ok {
				return nil, &InvalidKeywordError{Keyword: "dependencies", Value: arr, Reason: "must be an array of strings"}
			}
			required[prop] = names
			continue
		}
		validate, err := c.compileSub(deps[prop], sloc, "dependencies", prop)
		if err != nil {
			return nil, err
		}
		subs[prop] = validate
		props = append(props, prop)
	}
	var validators []boundValidator
	if len(required) > 0 {
		validators = append(validators, dependentRequiredValidator(c, kwloc, "dependencies", required,
			func(prop string, missing []string) kind.Kind {
				return &kind.Dependency{Prop: prop, Missing: missing}
			}))
	}
	if len(subs) > 0 {
		validators = append(validators, c.dependentSchemasValidator(kwloc, "dependencies", props, subs))
	}
	switch len(validators) {
	case 0:
		return nil, nil
	case 1:
		return validators[0], nil
	}
	return c.sequence(kwloc, "dependencies", c.draft().reducer, validators...), nil
}

// --

// tupleValidator applies subs to the items at the same index. Its
// annotation is the last index evaluated, or true if all were.
func (c *compiler) tupleValidator(kwloc, keyword string, subs []boundValidator) boundValidator {
	return func(v any, vloc string, _ AnnotationResults) *Output {
		items, ok := v.([]any)
		if !ok {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		n := min(len(items), len(subs))
		var failed []int
		var causes []*Output
		for i := 0; i < n; i++ {
			out := subs[i](items[i], jsonpointer.Index(vloc, i), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, keyword, vloc, &kind.Items{Keyword: keyword, Failed: []int{i}}, out)
				}
				failed = append(failed, i)
				causes = append(causes, out)
			}
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, keyword, vloc, &kind.Items{Keyword: keyword, Failed: failed}, causes...)
		}
		if n == 0 {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		var ann any = n - 1
		if n == len(items) {
			ann = true
		}
		return c.valid(kwloc, keyword, vloc, AnnotationResults{keyword: ann})
	}
}

// restValidator applies validate to the items from index start on.
// Its annotation is true if any item was evaluated.
func (c *compiler) restValidator(kwloc, keyword string, start int, validate boundValidator, isFalse bool) boundValidator {
	return func(v any, vloc string, _ AnnotationResults) *Output {
		items, ok := v.([]any)
		if !ok || len(items) <= start {
			return c.valid(kwloc, keyword, vloc, nil)
		}
		if isFalse {
			if keyword == "additionalItems" {
				return c.invalid(kwloc, keyword, vloc, &kind.AdditionalItems{Count: len(items) - start})
			}
			failed := make([]int, 0, len(items)-start)
			for i := start; i < len(items); i++ {
				failed = append(failed, i)
			}
			return c.invalid(kwloc, keyword, vloc, &kind.Items{Keyword: keyword, Failed: failed})
		}
		var failed []int
		var causes []*Output
		for i := start; i < len(items); i++ {
			out := validate(items[i], jsonpointer.Index(vloc, i), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, keyword, vloc, &kind.Items{Keyword: keyword, Failed: []int{i}}, out)
				}
				failed = append(failed, i)
				causes = append(causes, out)
			}
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, keyword, vloc, &kind.Items{Keyword: keyword, Failed: failed}, causes...)
		}
		return c.valid(kwloc, keyword, vloc, AnnotationResults{keyword: true})
	}
}

func compilePrefixItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, err := compileSchemaList(c, obj, sloc, "prefixItems", false)
	if err != nil {
		return nil, err
	}
	return c.tupleValidator(jsonpointer.Append(sloc, "prefixItems"), "prefixItems", subs), nil
}

func compileItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	kwloc := jsonpointer.Append(sloc, "items")
	if _, ok := obj["items"].([]any); ok {
		if c.draft().version >= 2020 {
			return nil, &InvalidKeywordError{Keyword: "items", Value: obj["items"], Reason: "must be a schema, use prefixItems for tuples"}
		}
		subs := make([]boundValidator, 0)
		for i, sub := range obj["items"].([]any) {
			validate, err := c.compileSub(sub, sloc, "items", strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			subs = append(subs, validate)
		}
		return c.tupleValidator(kwloc, "items", subs), nil
	}
	start := 0
	if c.draft().version >= 2020 {
		if prefix, ok := obj["prefixItems"].([]any); ok {
			start = len(prefix)
		}
	}
	validate, err := c.compileSub(obj["items"], sloc, "items")
	if err != nil {
		return nil, err
	}
	return c.restValidator(kwloc, "items", start, validate, obj["items"] == false), nil
}

// compileAdditionalItems has effect only next to the array form of items.
func compileAdditionalItems(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	tuple, ok := obj["items"].([]any)
	if !ok {
		return nil, nil
	}
	validate, err := c.compileSub(obj["additionalItems"], sloc, "additionalItems")
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "additionalItems")
	return c.restValidator(kwloc, "additionalItems", len(tuple), validate, obj["additionalItems"] == false), nil
}

// compileContains annotates the indexes of all matching items, read by
// minContains, maxContains and unevaluatedItems.
func compileContains(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileSub(obj["contains"], sloc, "contains")
	if err != nil {
		return nil, err
	}
	minZero := false
	if c.draft().version >= 2020 {
		if n, ok := intValue(obj["minContains"]); ok && n == 0 {
			minZero = true
		}
	}
	kwloc := jsonpointer.Append(sloc, "contains")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		items, ok := v.([]any)
		if !ok {
			return c.valid(kwloc, "contains", vloc, nil)
		}
		matched := make([]int, 0, len(items))
		for i, item := range items {
			if validate(item, jsonpointer.Index(vloc, i), nil).Valid {
				matched = append(matched, i)
			}
		}
		if len(matched) == 0 && !minZero {
			return c.invalid(kwloc, "contains", vloc, &kind.Contains{})
		}
		return c.valid(kwloc, "contains", vloc, AnnotationResults{"contains": matched, ownContains: matched})
	}, nil
}

// --

// propertiesResult builds the result of a keyword that applied
// subschemas to the properties evaluated.
func (c *compiler) propertiesResult(kwloc, keyword, vloc string, evaluated, failed []string, causes []*Output) *Output {
	if len(failed) > 0 {
		return c.invalid(kwloc, keyword, vloc, &kind.Properties{Keyword: keyword, Failed: failed}, causes...)
	}
	if len(evaluated) == 0 {
		return c.valid(kwloc, keyword, vloc, nil)
	}
	return c.valid(kwloc, keyword, vloc, AnnotationResults{keyword: evaluated})
}

func compileProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	subs, names, err := compileSchemaMap(c, obj, sloc, "properties")
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "properties")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "properties", vloc, nil)
		}
		var evaluated, failed []string
		var causes []*Output
		for _, name := range names {
			pv, ok := m[name]
			if !ok {
				continue
			}
			evaluated = append(evaluated, name)
			out := subs[name](pv, jsonpointer.Append(vloc, name), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "properties", vloc, &kind.Properties{Keyword: "properties", Failed: []string{name}}, out)
				}
				failed = append(failed, name)
				causes = append(causes, out)
			}
		}
		return c.propertiesResult(kwloc, "properties", vloc, evaluated, failed, causes)
	}, nil
}

type patternValidator struct {
	re       Regexp
	validate boundValidator
}

func compilePatterns(c *compiler, obj map[string]any, sloc string) ([]patternValidator, error) {
	subs, exprs, err := compileSchemaMap(c, obj, sloc, "patternProperties")
	if err != nil {
		return nil, err
	}
	patterns := make([]patternValidator, len(exprs))
	for i, expr := range exprs {
		re, err := c.compileRegexp("patternProperties", expr)
		if err != nil {
			return nil, err
		}
		patterns[i] = patternValidator{re, subs[expr]}
	}
	return patterns, nil
}

func compilePatternProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	patterns, err := compilePatterns(c, obj, sloc)
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "patternProperties")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "patternProperties", vloc, nil)
		}
		var evaluated, failed []string
		var causes []*Output
		for _, name := range sortedKeys(m) {
			matched, valid := false, true
			for _, p := range patterns {
				if !p.re.MatchString(name) {
					continue
				}
				matched = true
				out := p.validate(m[name], jsonpointer.Append(vloc, name), nil)
				if !out.Valid {
					if c.failFast {
						return c.invalid(kwloc, "patternProperties", vloc, &kind.Properties{Keyword: "patternProperties", Failed: []string{name}}, out)
					}
					valid = false
					causes = append(causes, out)
				}
			}
			if matched {
				evaluated = append(evaluated, name)
			}
			if !valid {
				failed = append(failed, name)
			}
		}
		return c.propertiesResult(kwloc, "patternProperties", vloc, evaluated, failed, causes)
	}, nil
}

// compileAdditionalProperties applies to the properties not named by the
// sibling properties nor matched by the sibling patternProperties.
func compileAdditionalProperties(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileSub(obj["additionalProperties"], sloc, "additionalProperties")
	if err != nil {
		return nil, err
	}
	props := map[string]struct{}{}
	if m, ok := obj["properties"].(map[string]any); ok {
		for name := range m {
			props[name] = struct{}{}
		}
	}
	var patterns []Regexp
	if m, ok := obj["patternProperties"].(map[string]any); ok {
		for expr := range m {
			re, err := c.compileRegexp("patternProperties", expr)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, re)
		}
	}
	isFalse := obj["additionalProperties"] == false
	kwloc := jsonpointer.Append(sloc, "additionalProperties")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "additionalProperties", vloc, nil)
		}
		var additional []string
	names:
		for _, name := range sortedKeys(m) {
			if _, ok := props[name]; ok {
				continue
			}
			for _, re := range patterns {
				if re.MatchString(name) {
					continue names
				}
			}
			additional = append(additional, name)
		}
		if isFalse && len(additional) > 0 {
			return c.invalid(kwloc, "additionalProperties", vloc, &kind.AdditionalProperties{Properties: additional})
		}
		var failed []string
		var causes []*Output
		for _, name := range additional {
			out := validate(m[name], jsonpointer.Append(vloc, name), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "additionalProperties", vloc, &kind.Properties{Keyword: "additionalProperties", Failed: []string{name}}, out)
				}
				failed = append(failed, name)
				causes = append(causes, out)
			}
		}
		return c.propertiesResult(kwloc, "additionalProperties", vloc, additional, failed, causes)
	}, nil
}

func compilePropertyNames(c *compiler, obj map[string]any, sloc string) (boundValidator, error) {
	validate, err := c.compileSub(obj["propertyNames"], sloc, "propertyNames")
	if err != nil {
		return nil, err
	}
	kwloc := jsonpointer.Append(sloc, "propertyNames")
	return func(v any, vloc string, _ AnnotationResults) *Output {
		m, ok := v.(map[string]any)
		if !ok {
			return c.valid(kwloc, "propertyNames", vloc, nil)
		}
		var failed []string
		var causes []*Output
		for _, name := range sortedKeys(m) {
			out := validate(name, jsonpointer.Append(vloc, name), nil)
			if !out.Valid {
				if c.failFast {
					return c.invalid(kwloc, "propertyNames", vloc, &kind.PropertyNames{Properties: []string{name}}, out)
				}
				failed = append(failed, name)
				causes = append(causes, out)
			}
		}
		if len(failed) > 0 {
			return c.invalid(kwloc, "propertyNames", vloc, &kind.PropertyNames{Properties: failed}, causes...)
		}
		return c.valid(kwloc, "propertyNames", vloc, nil)
	}, nil
}
