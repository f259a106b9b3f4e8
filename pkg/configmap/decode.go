// pkg/configmap/decode.go

package configmap

import (
	"encoding/json"
	"sort"

	cerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// FromInterface converts a decoded YAML/JSON value into the tagged tree.
//
// Go maps carry no order, so keys from a plain map are sorted; rendering is
// therefore deterministic for identical input regardless of decode order.
func FromInterface(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		// Absent values never reach the tree; a literal null has no Consul
		// config meaning, treat it as empty string.
		return String(""), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, cerr.Wrapf(err, "invalid number %q", t.String())
		}
		return Number(f), nil
	case []any:
		list := make([]Value, 0, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, cerr.Wrapf(err, "list index %d", i)
			}
			list = append(list, v)
		}
		return List(list...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		m := NewMap()
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, cerr.Wrapf(err, "key %q", k)
			}
			m.Set(k, v)
		}
		return MapVal(m), nil
	default:
		return Value{}, cerr.Newf("unsupported configuration value type %T", raw)
	}
}

// MapFromInterface converts a decoded map into an ordered Map. A nil input
// yields an empty map.
func MapFromInterface(raw map[string]any) (*Map, error) {
	if raw == nil {
		return NewMap(), nil
	}
	v, err := FromInterface(raw)
	if err != nil {
		return nil, err
	}
	m, _ := v.AsMap()
	return m, nil
}

// FromJSON parses a JSON object into an ordered Map.
func FromJSON(data []byte) (*Map, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, cerr.Wrap(err, "failed to parse JSON configuration")
	}
	return MapFromInterface(raw)
}

// FromYAML parses a YAML mapping into an ordered Map.
func FromYAML(data []byte) (*Map, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, cerr.Wrap(err, "failed to parse YAML configuration")
	}
	return MapFromInterface(raw)
}
