package params

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() *ParameterSet {
	ps := &ParameterSet{
		InstallMethod: "url",
		Version:       "1.16.3",
	}
	applyDefaults(ps, platform.ForOS("linux", "amd64", "debian"))
	return ps
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(ps *ParameterSet)
		wantErr string
	}{
		{
			name:   "valid url install",
			mutate: func(ps *ParameterSet) {},
		},
		{
			name: "missing version for url install",
			mutate: func(ps *ParameterSet) {
				ps.Version = ""
			},
			wantErr: "version is required",
		},
		{
			name: "explicit download_url makes version optional",
			mutate: func(ps *ParameterSet) {
				ps.Version = ""
				ps.DownloadURL = "https://example.com/consul.zip"
			},
		},
		{
			name: "malformed version",
			mutate: func(ps *ParameterSet) {
				ps.Version = "not-a-version"
			},
			wantErr: "invalid version",
		},
		{
			name: "bad install method",
			mutate: func(ps *ParameterSet) {
				ps.InstallMethod = "carrier-pigeon"
			},
			wantErr: "install_method",
		},
		{
			name: "docker requires image",
			mutate: func(ps *ParameterSet) {
				ps.InstallMethod = "docker"
				ps.DockerImage = ""
			},
			wantErr: "docker_image is required",
		},
		{
			name: "empty user",
			mutate: func(ps *ParameterSet) {
				ps.User = ""
			},
			wantErr: "User",
		},
		{
			name: "acl port out of range",
			mutate: func(ps *ParameterSet) {
				ps.ACLAPI.Port = 70000
			},
			wantErr: "Port",
		},
		{
			name: "acl protocol enum",
			mutate: func(ps *ParameterSet) {
				ps.ACLAPI.Protocol = "gopher"
			},
			wantErr: "Protocol",
		},
		{
			name: "config mode must be octal",
			mutate: func(ps *ParameterSet) {
				ps.ConfigMode = "worldwritable"
			},
			wantErr: "octal file mode",
		},
		{
			name: "policy without rules",
			mutate: func(ps *ParameterSet) {
				ps.Policies = map[string]map[string]any{
					"agent": {"description": "agent policy"},
				}
			},
			wantErr: "requires string rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := validParams()
			tt.mutate(ps)
			err := Validate(ps)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, steward_err.IsExpectedUserError(err),
				"intake failures should be classified as user errors")
		})
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	ps := validParams()
	ps.Version = "nope"
	ps.User = ""
	ps.ACLAPI.Port = 0

	err := Validate(ps)
	require.Error(t, err)
	for _, fragment := range []string{"invalid version", "User", "Port"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestApplyDefaults(t *testing.T) {
	plat := platform.ForOS("linux", "amd64", "debian")
	ps := &ParameterSet{InstallMethod: "url", Version: "1.16.3"}
	applyDefaults(ps, plat)

	assert.Equal(t, "consul", ps.PackageName)
	assert.Equal(t, "https://releases.hashicorp.com/consul/", ps.DownloadURLBase)
	assert.Equal(t, "zip", ps.DownloadExtension)
	assert.Equal(t, "/etc/consul.d", ps.ConfigDir)
	assert.Equal(t, "config.json", ps.ConfigName)
	assert.Equal(t, "0640", ps.ConfigMode)
	assert.Equal(t, "consul", ps.User)
	assert.Equal(t, "systemd", ps.InitStyle)
	assert.Equal(t, "localhost", ps.ACLAPI.Hostname)
	assert.Equal(t, 8500, ps.ACLAPI.Port)
	assert.Equal(t, 3, ps.ACLAPI.Tries)
}

func TestApplyDefaultsKeepsUserValues(t *testing.T) {
	plat := platform.ForOS("linux", "amd64", "debian")
	ps := &ParameterSet{
		InstallMethod: "url",
		Version:       "1.16.3",
		ConfigDir:     "/opt/consul/etc",
		User:          "svc-consul",
	}
	applyDefaults(ps, plat)

	assert.Equal(t, "/opt/consul/etc", ps.ConfigDir)
	assert.Equal(t, "svc-consul", ps.User)
}

func TestFileMode(t *testing.T) {
	ps := validParams()
	assert.Equal(t, uint32(0o640), ps.FileMode())

	ps.ConfigMode = "0600"
	assert.Equal(t, uint32(0o600), ps.FileMode())
}

func TestSecretNeverLeaks(t *testing.T) {
	s := NewSecret(map[string]any{"encrypt": "gossip-key"})

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))

	// Reveal is the single sanctioned read path.
	assert.Equal(t, "gossip-key", s.Reveal()["encrypt"])
}

func TestSecretZero(t *testing.T) {
	assert.True(t, NewSecret(nil).IsZero())
	assert.True(t, NewSecret(map[string]any{}).IsZero())
	assert.False(t, NewSecret(map[string]any{"k": "v"}).IsZero())
}
