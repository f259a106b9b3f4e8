package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSupervisor(t *testing.T, id resolver.Identity) *Supervisor {
	t.Helper()
	ps := &params.ParameterSet{
		ServiceName: "consul",
		PackageName: "consul",
		BinDir:      "/usr/local/bin",
		ConfigDir:   "/etc/consul",
	}
	s := New(testutil.TestRuntimeContext(t), ps, id, platform.ForOS("linux", "amd64", "debian"))
	s.unitDir = t.TempDir()
	return s
}

func managedIdentity() resolver.Identity {
	return resolver.Identity{
		User:      "consul",
		Group:     "consul",
		Owner:     "consul",
		InitStyle: platform.InitSystemd,
		Manage:    true,
	}
}

func TestManagedInitStyles(t *testing.T) {
	tests := []struct {
		name string
		init platform.InitStyle
		want bool
	}{
		{"systemd", platform.InitSystemd, true},
		{"sysv", platform.InitSysV, false},
		{"launchd", platform.InitLaunchd, false},
		{"unmanaged", resolver.Unmanaged, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSupervisor(t, resolver.Identity{InitStyle: tt.init})
			assert.Equal(t, tt.want, s.managed())
		})
	}
}

func TestIdentityInitStyleFromPlatform(t *testing.T) {
	// The identity's init style comes straight off the platform table, so
	// the supervisor must accept the platform's typed constants.
	plat := platform.ForOS("linux", "amd64", "debian")
	id := resolver.SelectIdentityContext("url", "consul", "consul", "", plat.Init)

	assert.Equal(t, platform.InitSystemd, id.InitStyle)
	s := testSupervisor(t, id)
	assert.True(t, s.managed())
}

func TestRenderUnit(t *testing.T) {
	s := testSupervisor(t, managedIdentity())
	unit := s.renderUnit(resolver.Derived{HTTPAddr: "127.0.0.1", HTTPPort: 8500})

	assert.Contains(t, unit, "User=consul")
	assert.Contains(t, unit, "Group=consul")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/consul agent -config-dir=/etc/consul")
	assert.Contains(t, unit, "ExecReload=/bin/kill -HUP $MAINPID")
	assert.Contains(t, unit, `Environment="CONSUL_HTTP_ADDR=127.0.0.1:8500"`)
}

func TestUnitPath(t *testing.T) {
	s := testSupervisor(t, managedIdentity())
	assert.Equal(t, filepath.Join(s.unitDir, "consul.service"), s.unitPath())
}

func TestUnmanagedInitSkipsUnit(t *testing.T) {
	s := testSupervisor(t, resolver.Identity{InitStyle: resolver.Unmanaged})

	changed, err := s.EnsureUnit(resolver.Derived{HTTPAddr: "127.0.0.1", HTTPPort: 8500})
	require.NoError(t, err)
	assert.False(t, changed)

	entries, err := os.ReadDir(s.unitDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no unit file written for unmanaged init")
}

func TestUnmanagedInitSkipsLifecycle(t *testing.T) {
	s := testSupervisor(t, resolver.Identity{InitStyle: resolver.Unmanaged})

	assert.NoError(t, s.Converge())
	assert.NoError(t, s.Restart())
	assert.NoError(t, s.Reload())
}

func TestEnsureDataDir(t *testing.T) {
	s := testSupervisor(t, resolver.Identity{InitStyle: resolver.Unmanaged})

	// No data dir in the merged config: nothing to do.
	require.NoError(t, s.EnsureDataDir(resolver.Derived{}))

	dir := filepath.Join(t.TempDir(), "opt", "consul")
	d := resolver.Derived{DataDir: resolver.OptString{Value: dir, Set: true}}
	require.NoError(t, s.EnsureDataDir(d))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
