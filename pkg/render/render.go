// pkg/render/render.go
//
// Realizes the configure stage: the main Consul config file plus one JSON
// fragment per service, watch, and check entry. Every write reports whether
// content actually changed so the plan's notify edge can fire.

package render

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/configmap"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Renderer writes the desired configuration into the config directory.
type Renderer struct {
	rc *steward_io.RuntimeContext
	ps *params.ParameterSet
	id resolver.Identity
}

// New creates a renderer for one resolved state.
func New(rc *steward_io.RuntimeContext, ps *params.ParameterSet, id resolver.Identity) *Renderer {
	return &Renderer{rc: rc, ps: ps, id: id}
}

func (r *Renderer) indent() int {
	if r.ps.PrettyConfig {
		return r.ps.PrettyConfigIndent
	}
	return 0
}

// WriteConfig renders the merged ConfigMap to the main config file. The
// sensitive overlay is unwrapped in memory immediately before
// serialization; it is never logged, but the file on disk will contain it.
func (r *Renderer) WriteConfig(merged *configmap.Map, secret params.Secret) (bool, error) {
	logger := otelzap.Ctx(r.rc.Ctx)

	final := merged
	if !secret.IsZero() {
		overlay, err := configmap.MapFromInterface(secret.Reveal())
		if err != nil {
			return false, cerr.Wrap(err, "invalid sensitive_config")
		}
		final = configmap.DeepMerge(merged, overlay)
		logger.Debug("Applied sensitive configuration overlay",
			zap.Int("key_count", overlay.Len()))
	}

	path := filepath.Join(r.ps.ConfigDir, r.ps.ConfigName)
	return r.writeFile(path, final.RenderJSON(r.indent()))
}

// WriteFragments renders one JSON file per entry of a named collection.
// kind is "service", "watch", or "check"; entries of one collection have no
// ordering dependency between each other.
func (r *Renderer) WriteFragments(kind string, entries map[string]map[string]any) (bool, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		doc, err := fragmentDoc(kind, name, entries[name])
		if err != nil {
			return changed, cerr.Wrapf(err, "invalid %s %q", kind, name)
		}
		path := filepath.Join(r.ps.ConfigDir, kind+"_"+name+".json")
		c, err := r.writeFile(path, doc.RenderJSON(r.indent()))
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

// PurgeStale removes fragment files steward wrote on earlier runs whose
// entries have since left the manifest.
func (r *Renderer) PurgeStale(kind string, entries map[string]map[string]any) (bool, error) {
	logger := otelzap.Ctx(r.rc.Ctx)

	dirEntries, err := os.ReadDir(r.ps.ConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, cerr.Wrapf(err, "failed to scan config dir %s", r.ps.ConfigDir)
	}

	prefix := kind + "_"
	changed := false
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		entryName := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if _, wanted := entries[entryName]; wanted {
			continue
		}
		full := filepath.Join(r.ps.ConfigDir, name)
		if err := os.Remove(full); err != nil {
			return changed, cerr.Wrapf(err, "failed to remove stale fragment %s", full)
		}
		logger.Info("Removed stale config fragment", zap.String("path", full))
		changed = true
	}
	return changed, nil
}

// writeFile writes content when it differs from what is on disk, applying
// mode and ownership, and reports whether anything changed.
func (r *Renderer) writeFile(path string, content []byte) (bool, error) {
	logger := otelzap.Ctx(r.rc.Ctx)

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		logger.Debug("Config file already current", zap.String("path", path))
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, cerr.Wrapf(err, "failed to create config dir for %s", path)
	}

	if err := os.WriteFile(path, content, os.FileMode(r.ps.FileMode())); err != nil {
		return false, cerr.Wrapf(err, "failed to write %s", path)
	}

	if r.id.Manage && r.id.Owner != "" {
		if err := execute.RunSimple(r.rc.Ctx, "chown", r.id.Owner+":"+r.id.Group, path); err != nil {
			logger.Warn("Failed to set config file ownership",
				zap.String("path", path),
				zap.String("owner", r.id.Owner),
				zap.Error(err))
		}
	}

	logger.Info("Config file written",
		zap.String("path", path),
		zap.Int("bytes", len(content)))
	return true, nil
}

// fragmentDoc wraps a raw entry in the envelope Consul expects for that
// definition kind: {"service": {...}}, {"check": {...}}, or
// {"watches": [{...}]}. Services and checks get the map key as their name
// when the entry does not set one.
func fragmentDoc(kind, name string, spec map[string]any) (*configmap.Map, error) {
	body, err := configmap.MapFromInterface(spec)
	if err != nil {
		return nil, err
	}

	doc := configmap.NewMap()
	switch kind {
	case "watch":
		doc.Set("watches", configmap.List(configmap.MapVal(body)))
	default:
		if _, ok := body.Get("name"); !ok {
			named := configmap.NewMap()
			named.Set("name", configmap.String(name))
			for _, k := range body.Keys() {
				v, _ := body.Get(k)
				named.Set(k, v)
			}
			body = named
		}
		doc.Set(kind, configmap.MapVal(body))
	}
	return doc, nil
}
