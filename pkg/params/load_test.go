package params

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := testutil.TempConfigDir(t)
	path := testutil.WriteFile(t, dir, "steward.yaml", []byte(`
install_method: url
version: "1.16.3"
pretty_config: true
config_hash:
  datacenter: dc1
sensitive_config:
  encrypt: gossip-key
acl_policies:
  agent-policy:
    rules: 'node_prefix "" { policy = "write" }'
acls:
  legacy-agent:
    rules: 'node "" { policy = "write" }'
`))

	rc := testutil.TestRuntimeContext(t)
	ps, err := Load(rc, path, platform.ForOS("linux", "amd64", "debian"))
	require.NoError(t, err)

	assert.Equal(t, "url", ps.InstallMethod)
	assert.Equal(t, "1.16.3", ps.Version)

	// Platform and convention defaults fill unset fields.
	assert.Equal(t, "consul", ps.PackageName)
	assert.Equal(t, "config.json", ps.ConfigName)
	assert.Equal(t, 4, ps.PrettyConfigIndent)
	assert.Equal(t, "localhost", ps.ACLAPI.Hostname)
	assert.Equal(t, 8500, ps.ACLAPI.Port)

	// Booleans default true when the manifest is silent.
	assert.True(t, ps.RestartOnChange)
	assert.True(t, ps.ServiceEnable)
	assert.True(t, ps.PurgeConfigDir)

	// The sensitive fragment exists only inside the wrapper.
	require.False(t, ps.SensitiveConfig.IsZero())
	assert.Equal(t, "gossip-key", ps.SensitiveConfig.Reveal()["encrypt"])

	require.Contains(t, ps.Policies, "agent-policy")
	require.Contains(t, ps.Acls, "legacy-agent")
}

func TestLoadManifestAclsRequireRules(t *testing.T) {
	dir := testutil.TempConfigDir(t)
	path := testutil.WriteFile(t, dir, "steward.yaml", []byte(`
install_method: none
acls:
  broken: {}
  bootstrap:
    type: management
    rules: ""
`))

	rc := testutil.TestRuntimeContext(t)
	_, err := Load(rc, path, platform.ForOS("linux", "amd64", "debian"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acls[broken]")
	assert.NotContains(t, err.Error(), "acls[bootstrap]", "management entries need no rules")
}

func TestLoadManifestExplicitFalseSurvives(t *testing.T) {
	dir := testutil.TempConfigDir(t)
	path := testutil.WriteFile(t, dir, "steward.yaml", []byte(`
install_method: none
restart_on_change: false
purge_config_dir: false
`))

	rc := testutil.TestRuntimeContext(t)
	ps, err := Load(rc, path, platform.ForOS("linux", "amd64", "debian"))
	require.NoError(t, err)

	assert.False(t, ps.RestartOnChange)
	assert.False(t, ps.PurgeConfigDir)
	assert.True(t, ps.ServiceEnable, "untouched default stays true")
}

func TestLoadManifestEnvOverrides(t *testing.T) {
	dir := testutil.TempConfigDir(t)
	path := testutil.WriteFile(t, dir, "steward.yaml", []byte(`
install_method: url
version: "1.16.3"
`))

	// Overrides for keys present in the file and for keys the file never
	// mentions both have to land.
	t.Setenv("STEWARD_VERSION", "1.17.0")
	t.Setenv("STEWARD_CONFIG_DIR", "/srv/consul")
	t.Setenv("STEWARD_ACL_API_PORT", "8501")

	rc := testutil.TestRuntimeContext(t)
	ps, err := Load(rc, path, platform.ForOS("linux", "amd64", "debian"))
	require.NoError(t, err)

	assert.Equal(t, "1.17.0", ps.Version)
	assert.Equal(t, "/srv/consul", ps.ConfigDir)
	assert.Equal(t, 8501, ps.ACLAPI.Port)
}

func TestLoadManifestMissingFile(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	_, err := Load(rc, "/nonexistent/steward.yaml", platform.ForOS("linux", "amd64", "debian"))
	assert.Error(t, err)
}

func TestLoadManifestInvalid(t *testing.T) {
	dir := testutil.TempConfigDir(t)
	path := testutil.WriteFile(t, dir, "steward.yaml", []byte(`
install_method: teleport
user: ""
`))

	rc := testutil.TestRuntimeContext(t)
	_, err := Load(rc, path, platform.ForOS("linux", "amd64", "debian"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InstallMethod")
}
