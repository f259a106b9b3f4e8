// pkg/configmap/render.go

package configmap

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RenderJSON serializes the map as a JSON document in insertion order.
// indent <= 0 renders compact output; otherwise nested levels indent by
// that many spaces. The result always ends with a newline so the file is
// POSIX-friendly.
func (m *Map) RenderJSON(indent int) []byte {
	var buf bytes.Buffer
	writeMap(&buf, m, indent, 0)
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value, indent, depth int) {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		writeJSONString(buf, s)
	case KindNumber:
		f, _ := v.AsNumber()
		buf.WriteString(formatNumber(f))
	case KindBool:
		b, _ := v.AsBool()
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindMap:
		sub, _ := v.AsMap()
		writeMap(buf, sub, indent, depth)
	case KindList:
		list, _ := v.AsList()
		writeList(buf, list, indent, depth)
	}
}

func writeMap(buf *bytes.Buffer, m *Map, indent, depth int) {
	if m == nil || m.Len() == 0 {
		buf.WriteString("{}")
		return
	}
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNewlineIndent(buf, indent, depth+1)
		writeJSONString(buf, k)
		buf.WriteByte(':')
		if indent > 0 {
			buf.WriteByte(' ')
		}
		v, _ := m.Get(k)
		writeValue(buf, v, indent, depth+1)
	}
	writeNewlineIndent(buf, indent, depth)
	buf.WriteByte('}')
}

func writeList(buf *bytes.Buffer, list []Value, indent, depth int) {
	if len(list) == 0 {
		buf.WriteString("[]")
		return
	}
	buf.WriteByte('[')
	for i, e := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNewlineIndent(buf, indent, depth+1)
		writeValue(buf, e, indent, depth+1)
	}
	writeNewlineIndent(buf, indent, depth)
	buf.WriteByte(']')
}

func writeNewlineIndent(buf *bytes.Buffer, indent, depth int) {
	if indent <= 0 {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(" ", indent*depth))
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// encoding/json handles escaping; a plain string cannot fail.
	b, _ := json.Marshal(s)
	buf.Write(b)
}
