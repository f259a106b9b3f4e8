// pkg/configmap/merge.go

package configmap

// DeepMerge merges overrides into defaults and returns a new map; neither
// input is mutated.
//
// Rules:
//   - key only in defaults or only in overrides: kept as-is
//   - key in both, both values maps: merged recursively
//   - key in both otherwise: the overrides value wins outright, including a
//     map replacing a scalar or a scalar replacing a map
//
// Result key order is the defaults order followed by override-only keys in
// their own order.
func DeepMerge(defaults, overrides *Map) *Map {
	if defaults == nil {
		defaults = NewMap()
	}
	if overrides == nil {
		overrides = NewMap()
	}

	out := NewMap()
	for _, k := range defaults.Keys() {
		dv, _ := defaults.Get(k)
		ov, inOverride := overrides.Get(k)
		if !inOverride {
			out.Set(k, dv.Copy())
			continue
		}
		dm, dIsMap := dv.AsMap()
		om, oIsMap := ov.AsMap()
		if dIsMap && oIsMap {
			out.Set(k, MapVal(DeepMerge(dm, om)))
			continue
		}
		out.Set(k, ov.Copy())
	}

	for _, k := range overrides.Keys() {
		if _, seen := defaults.Get(k); seen {
			continue
		}
		ov, _ := overrides.Get(k)
		out.Set(k, ov.Copy())
	}

	return out
}
