package installer

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func testInstaller(t *testing.T, ps *params.ParameterSet) *Installer {
	t.Helper()
	return New(testutil.TestRuntimeContext(t), ps, platform.ForOS("linux", "amd64", "debian"))
}

func TestEnsureNoneIsNoOp(t *testing.T) {
	i := testInstaller(t, &params.ParameterSet{InstallMethod: "none"})
	assert.NoError(t, i.Ensure(&resolver.State{}))
}

func TestEnsureUnknownMethod(t *testing.T) {
	i := testInstaller(t, &params.ParameterSet{InstallMethod: "tarball"})
	err := i.Ensure(&resolver.State{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown install method")
}

func TestImageRef(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		version string
		want    string
	}{
		{"pinned version", "hashicorp/consul", "1.16.3", "hashicorp/consul:1.16.3"},
		{"no version floats to latest", "hashicorp/consul", "", "hashicorp/consul:latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := testInstaller(t, &params.ParameterSet{
				InstallMethod: "docker",
				DockerImage:   tt.image,
				Version:       tt.version,
			})
			assert.Equal(t, tt.want, i.imageRef())
		})
	}
}

func TestBinaryPath(t *testing.T) {
	i := testInstaller(t, &params.ParameterSet{
		BinDir:      "/usr/local/bin",
		PackageName: "consul",
	})
	assert.Equal(t, "/usr/local/bin/consul", i.binaryPath())
}

func TestBinaryCurrentWithoutBinary(t *testing.T) {
	i := testInstaller(t, &params.ParameterSet{
		BinDir:      t.TempDir(),
		PackageName: "consul",
		Version:     "1.16.3",
	})
	assert.False(t, i.binaryCurrent(), "missing binary is never current")
}

func TestBinaryCurrentWithoutVersion(t *testing.T) {
	i := testInstaller(t, &params.ParameterSet{
		BinDir:      "/usr/local/bin",
		PackageName: "consul",
	})
	assert.False(t, i.binaryCurrent(), "no desired version means reinstall")
}
