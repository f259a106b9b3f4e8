package drift

import (
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/configmap"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desiredConfig(t *testing.T) *configmap.Map {
	t.Helper()
	m, err := configmap.MapFromInterface(map[string]any{
		"datacenter": "dc1",
		"server":     true,
		"ports":      map[string]any{"http": 8500},
	})
	require.NoError(t, err)
	return m
}

func TestInspectMissingFile(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	path := filepath.Join(t.TempDir(), "config.json")

	report, err := Inspect(rc, desiredConfig(t), path)
	require.NoError(t, err)

	assert.Equal(t, "absent", report.Format)
	assert.False(t, report.InSync())
	// Every desired key reports as added.
	kinds := map[string]ChangeKind{}
	for _, c := range report.Changes {
		kinds[c.Path] = c.Kind
	}
	assert.Equal(t, ChangeAdded, kinds["datacenter"])
	assert.Equal(t, ChangeAdded, kinds["ports"])
}

func TestInspectInSync(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	dir := t.TempDir()
	desired := desiredConfig(t)
	testutil.WriteFile(t, dir, "config.json", desired.RenderJSON(0))

	report, err := Inspect(rc, desired, filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	assert.Equal(t, "json", report.Format)
	assert.True(t, report.InSync())
}

func TestInspectDrift(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "config.json",
		[]byte(`{"datacenter":"dc2","server":true,"ports":{"http":8500,"https":8501}}`))

	report, err := Inspect(rc, desiredConfig(t), filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	require.Len(t, report.Changes, 2)

	byPath := map[string]Change{}
	for _, c := range report.Changes {
		byPath[c.Path] = c
	}

	dc := byPath["datacenter"]
	assert.Equal(t, ChangeUpdated, dc.Kind)
	assert.Equal(t, `"dc2"`, dc.Old)
	assert.Equal(t, `"dc1"`, dc.New)

	https := byPath["ports.https"]
	assert.Equal(t, ChangeRemoved, https.Kind, "nested extras report with dotted paths")
}

func TestInspectHCLFallback(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "consul.hcl", []byte(`
datacenter = "dc1"
server     = true

ports {
  http = 8500
}
`))

	report, err := Inspect(rc, desiredConfig(t), filepath.Join(dir, "consul.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "hcl", report.Format)
	assert.True(t, report.Partial)
	assert.True(t, report.InSync())
}

func TestInspectUnparseable(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "config.json", []byte("not a config {{{"))

	_, err := Inspect(rc, desiredConfig(t), filepath.Join(dir, "config.json"))
	assert.Error(t, err)
}

func TestReportString(t *testing.T) {
	report := &Report{
		Path: "/etc/consul/config.json",
		Changes: []Change{
			{Path: "datacenter", Kind: ChangeUpdated, Old: `"dc2"`, New: `"dc1"`},
			{Path: "encrypt", Kind: ChangeAdded, New: `"key"`},
			{Path: "ui", Kind: ChangeRemoved, Old: "true"},
		},
	}
	out := report.String()
	assert.Contains(t, out, `~ datacenter: "dc2" -> "dc1"`)
	assert.Contains(t, out, `+ encrypt = "key"`)
	assert.Contains(t, out, "- ui = true")
}
