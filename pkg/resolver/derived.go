// pkg/resolver/derived.go

package resolver

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/configmap"
)

// OptString is an explicitly optional string; absence is meaningful and is
// never conflated with the empty string.
type OptString struct {
	Value string
	Set   bool
}

// OptInt is an explicitly optional integer.
type OptInt struct {
	Value int
	Set   bool
}

// Derived holds the scalar values read out of the merged ConfigMap that
// downstream realizers depend on.
type Derived struct {
	// DataDir has no default: absent means the data directory is unmanaged.
	DataDir OptString
	// HTTPPort falls back to Consul's stock 8500.
	HTTPPort int
	// HTTPSPort stays absent when TLS is not configured.
	HTTPSPort OptInt
	// HTTPAddr is the first address the HTTP API binds; consumers that need
	// the full multi-address list must re-read the ConfigMap.
	HTTPAddr       string
	VerifyIncoming bool
	CertFile       OptString
	KeyFile        OptString
}

// ExtractDerived reads the documented paths out of the merged ConfigMap,
// applying the default policy per field.
func ExtractDerived(m *configmap.Map) Derived {
	d := Derived{
		HTTPPort: m.GetInt("ports.http", 8500),
		HTTPAddr: "127.0.0.1",
	}

	if v, ok := m.GetPath("data_dir"); ok {
		if s, ok := v.AsString(); ok {
			d.DataDir = OptString{Value: s, Set: true}
		}
	}

	if v, ok := m.GetPath("ports.https"); ok {
		if i, ok := v.AsInt(); ok {
			d.HTTPSPort = OptInt{Value: i, Set: true}
		}
	}

	// addresses.http and client_addr may both hold space-separated
	// multi-address strings; only the first token feeds this derivation.
	if addr, ok := firstToken(m.GetString("addresses.http", "")); ok {
		d.HTTPAddr = addr
	} else if addr, ok := firstToken(m.GetString("client_addr", "")); ok {
		d.HTTPAddr = addr
	}

	d.VerifyIncoming = m.GetBool("verify_incoming", false)

	if v, ok := m.GetPath("cert_file"); ok {
		if s, ok := v.AsString(); ok {
			d.CertFile = OptString{Value: s, Set: true}
		}
	}
	if v, ok := m.GetPath("key_file"); ok {
		if s, ok := v.AsString(); ok {
			d.KeyFile = OptString{Value: s, Set: true}
		}
	}

	return d
}

func firstToken(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
