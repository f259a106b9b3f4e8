// pkg/configmap/value.go
//
// Tagged-union value tree for Consul configuration content.
//
// Consul's config file is JSON with heterogeneous values (strings, numbers,
// booleans, nested objects, lists). The tree is explicit about its tag so
// merge and render logic pattern-match instead of reflecting, and the map
// form preserves key order so repeated renders are byte-identical.

package configmap

import (
	"strconv"
	"strings"
)

// Kind tags a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one node of the configuration tree. The zero Value is the empty
// string; use the constructors below.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    *Map
	list []Value
}

// String wraps a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric scalar.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int wraps an integer scalar.
func Int(i int) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool wraps a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// MapVal wraps an ordered map node. A nil map becomes an empty one.
func MapVal(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// List wraps a list node.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Kind returns the tag of this value.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload; ok is false for non-strings.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric payload; ok is false for non-numbers.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsInt returns the numeric payload truncated to int.
func (v Value) AsInt() (int, bool) {
	f, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	return int(f), true
}

// AsBool returns the boolean payload; ok is false for non-booleans.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsMap returns the map payload; ok is false for non-maps.
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// AsList returns the list payload; ok is false for non-lists.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Equal reports deep equality, order-sensitive for maps and lists.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	default:
		return false
	}
}

// Copy returns a deep copy; scalar values share nothing with the original.
func (v Value) Copy() Value {
	switch v.kind {
	case KindMap:
		return MapVal(v.m.Copy())
	case KindList:
		cp := make([]Value, len(v.list))
		for i, e := range v.list {
			cp[i] = e.Copy()
		}
		return Value{kind: KindList, list: cp}
	default:
		return v
	}
}

// GoString renders a compact debug form. Not a serialization format.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.GoString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, 0, v.m.Len())
		for _, k := range v.m.Keys() {
			e, _ := v.m.Get(k)
			parts = append(parts, k+": "+e.GoString())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
