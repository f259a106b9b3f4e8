// pkg/drift/drift.go
//
// Drift inspection between the resolved desired config and what is on disk.
// The on-disk file is usually the JSON this tool rendered, but hand-managed
// hosts may carry an HCL agent config; those parse into a reduced field set.

package drift

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/configmap"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Report describes how the on-disk config differs from the desired one.
type Report struct {
	Path    string
	Format  string // "json" or "hcl"
	Partial bool   // HCL parses capture only the known agent fields
	Changes []Change
}

// InSync reports whether nothing would change on apply.
func (r *Report) InSync() bool {
	return len(r.Changes) == 0
}

// ChangeKind classifies a single drift entry.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"   // desired has it, disk does not
	ChangeRemoved ChangeKind = "removed" // disk has it, desired does not
	ChangeUpdated ChangeKind = "updated"
)

// Change is one drifted setting, addressed by dotted path.
type Change struct {
	Path string
	Kind ChangeKind
	Old  string
	New  string
}

// agentConfig is the reduced HCL shape accepted from hand-managed hosts.
// Consul allows both formats, so the JSON path stays fully generic and only
// HCL goes through this struct.
type agentConfig struct {
	Datacenter string `hcl:"datacenter,optional"`
	NodeName   string `hcl:"node_name,optional"`
	DataDir    string `hcl:"data_dir,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	Server     *bool  `hcl:"server,optional"`

	Ports     *portsBlock     `hcl:"ports,block"`
	Addresses *addressesBlock `hcl:"addresses,block"`
}

type portsBlock struct {
	HTTP  *int `hcl:"http,optional"`
	HTTPS *int `hcl:"https,optional"`
}

type addressesBlock struct {
	HTTP *string `hcl:"http,optional"`
}

// Inspect compares the desired config against the file at path. A missing
// file is not an error; every desired key reports as added.
func Inspect(rc *steward_io.RuntimeContext, desired *configmap.Map, path string) (*Report, error) {
	logger := otelzap.Ctx(rc.Ctx)

	existing, format, partial, err := readExisting(path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:    path,
		Format:  format,
		Partial: partial,
		Changes: diff("", desired, existing),
	}

	logger.Info("Config drift inspected",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("changes", len(report.Changes)))
	return report, nil
}

func readExisting(path string) (*configmap.Map, string, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return configmap.NewMap(), "absent", false, nil
	}
	if err != nil {
		return nil, "", false, cerr.Wrapf(err, "failed to read %s", path)
	}

	if m, jsonErr := configmap.FromJSON(data); jsonErr == nil {
		return m, "json", false, nil
	}

	// hclsimple picks the syntax from the filename suffix, so force native
	// HCL here regardless of what the file is called.
	var cfg agentConfig
	if hclErr := hclsimple.Decode("config.hcl", data, nil, &cfg); hclErr == nil {
		return hclToMap(cfg), "hcl", true, nil
	}

	return nil, "", false, cerr.Newf("%s is neither valid JSON nor valid HCL", path)
}

func hclToMap(cfg agentConfig) *configmap.Map {
	m := configmap.NewMap()
	setString := func(key, val string) {
		if val != "" {
			m.Set(key, configmap.String(val))
		}
	}
	setString("datacenter", cfg.Datacenter)
	setString("node_name", cfg.NodeName)
	setString("data_dir", cfg.DataDir)
	setString("log_level", cfg.LogLevel)
	if cfg.Server != nil {
		m.Set("server", configmap.Bool(*cfg.Server))
	}
	if cfg.Ports != nil {
		ports := configmap.NewMap()
		if cfg.Ports.HTTP != nil {
			ports.Set("http", configmap.Int(*cfg.Ports.HTTP))
		}
		if cfg.Ports.HTTPS != nil {
			ports.Set("https", configmap.Int(*cfg.Ports.HTTPS))
		}
		m.Set("ports", configmap.MapVal(ports))
	}
	if cfg.Addresses != nil && cfg.Addresses.HTTP != nil {
		addrs := configmap.NewMap()
		addrs.Set("http", configmap.String(*cfg.Addresses.HTTP))
		m.Set("addresses", configmap.MapVal(addrs))
	}
	return m
}

// diff walks both maps and records every divergence. Nested maps recurse;
// any other kind mismatch or value difference reports at the current path.
func diff(prefix string, desired, existing *configmap.Map) []Change {
	var changes []Change

	for _, key := range desired.Keys() {
		path := joinPath(prefix, key)
		want, _ := desired.Get(key)
		have, ok := existing.Get(key)
		if !ok {
			changes = append(changes, Change{Path: path, Kind: ChangeAdded, New: want.GoString()})
			continue
		}

		wantMap, wantIsMap := want.AsMap()
		haveMap, haveIsMap := have.AsMap()
		if wantIsMap && haveIsMap {
			changes = append(changes, diff(path, wantMap, haveMap)...)
			continue
		}

		if !want.Equal(have) {
			changes = append(changes, Change{
				Path: path,
				Kind: ChangeUpdated,
				Old:  have.GoString(),
				New:  want.GoString(),
			})
		}
	}

	for _, key := range existing.Keys() {
		if _, ok := desired.Get(key); ok {
			continue
		}
		have, _ := existing.Get(key)
		changes = append(changes, Change{
			Path: joinPath(prefix, key),
			Kind: ChangeRemoved,
			Old:  have.GoString(),
		})
	}

	return changes
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// String renders the report for terminal output.
func (r *Report) String() string {
	var b strings.Builder
	if r.InSync() {
		b.WriteString("config in sync: " + r.Path + "\n")
		return b.String()
	}
	for _, c := range r.Changes {
		switch c.Kind {
		case ChangeAdded:
			b.WriteString("+ " + c.Path + " = " + c.New + "\n")
		case ChangeRemoved:
			b.WriteString("- " + c.Path + " = " + c.Old + "\n")
		case ChangeUpdated:
			b.WriteString("~ " + c.Path + ": " + c.Old + " -> " + c.New + "\n")
		}
	}
	return b.String()
}

// MarshalJSON lets inspect emit the report as machine-readable output.
func (r *Report) MarshalJSON() ([]byte, error) {
	type change struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
		Old  string `json:"old,omitempty"`
		New  string `json:"new,omitempty"`
	}
	out := struct {
		Path    string   `json:"path"`
		Format  string   `json:"format"`
		Partial bool     `json:"partial,omitempty"`
		InSync  bool     `json:"in_sync"`
		Changes []change `json:"changes"`
	}{
		Path:    r.Path,
		Format:  r.Format,
		Partial: r.Partial,
		InSync:  r.InSync(),
		Changes: make([]change, 0, len(r.Changes)),
	}
	for _, c := range r.Changes {
		out.Changes = append(out.Changes, change{Path: c.Path, Kind: string(c.Kind), Old: c.Old, New: c.New})
	}
	return json.Marshal(out)
}
