// pkg/configmap/map.go

package configmap

import "strings"

// Map is an insertion-ordered string-keyed mapping of Values.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set inserts or replaces a key. New keys append to the order.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value for key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the key order. Callers must not mutate the slice.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// GetPath walks nested maps along a dotted path like "ports.http".
func (m *Map) GetPath(path string) (Value, bool) {
	cur := m
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := cur.Get(part)
		if !ok {
			return Value{}, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.AsMap()
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return Value{}, false
}

// GetString returns the string at path, or fallback when absent or not a
// string.
func (m *Map) GetString(path, fallback string) string {
	if v, ok := m.GetPath(path); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return fallback
}

// GetInt returns the integer at path, or fallback when absent or not numeric.
func (m *Map) GetInt(path string, fallback int) int {
	if v, ok := m.GetPath(path); ok {
		if i, ok := v.AsInt(); ok {
			return i
		}
	}
	return fallback
}

// GetBool returns the boolean at path, or fallback when absent or not a bool.
func (m *Map) GetBool(path string, fallback bool) bool {
	if v, ok := m.GetPath(path); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return fallback
}

// Equal reports deep equality including key order.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		a := m.vals[k]
		b := other.vals[k]
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy.
func (m *Map) Copy() *Map {
	cp := NewMap()
	for _, k := range m.keys {
		cp.Set(k, m.vals[k].Copy())
	}
	return cp
}
