package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// MediaType checks that b is a document of the media type, and returns
// the decoded value when it has a JSON data model, else nil.
type MediaType func(b []byte) (any, error)

var mediaTypes = struct {
	sync.RWMutex
	m map[string]MediaType
}{m: map[string]MediaType{
	"application/json": decodeJSONMediaType,
	"application/yaml": decodeYAMLMediaType,
}}

// RegisterMediaType registers mt for contentMediaType name.
func RegisterMediaType(name string, mt MediaType) {
	mediaTypes.Lock()
	defer mediaTypes.Unlock()
	mediaTypes.m[name] = mt
}

// GetMediaType returns the MediaType registered for contentMediaType name.
func GetMediaType(name string) (MediaType, bool) {
	mediaTypes.RLock()
	defer mediaTypes.RUnlock()
	mt, ok := mediaTypes.m[name]
	return mt, ok
}

func decodeJSONMediaType(b []byte) (any, error) {
	return UnmarshalJSON(bytes.NewReader(b))
}

func decodeYAMLMediaType(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return FromYAML(v)
}

// FromYAML converts a value decoded by gopkg.in/yaml.v3 into the JSON data
// model: maps get string keys and numbers become json.Number.
func FromYAML(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			conv, err := FromYAML(e)
			if err != nil {
				return nil, err
			}
			v[k] = conv
		}
		return v, nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("jsonschema: non-string yaml key %v", k)
			}
			conv, err := FromYAML(e)
			if err != nil {
				return nil, err
			}
			m[ks] = conv
		}
		return m, nil
	case []any:
		for i, e := range v {
			conv, err := FromYAML(e)
			if err != nil {
				return nil, err
			}
			v[i] = conv
		}
		return v, nil
	case int, int64, uint64:
		return json.Number(fmt.Sprint(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("jsonschema: yaml number %v has no json representation", v)
		}
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return v, nil
}
