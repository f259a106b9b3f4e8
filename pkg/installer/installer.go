// pkg/installer/installer.go
//
// Realizes the install stage for each installation method.

package installer

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Installer ensures the Consul binary (or image) is present at the desired
// version.
type Installer struct {
	rc   *steward_io.RuntimeContext
	ps   *params.ParameterSet
	plat platform.Platform
}

// New creates an installer.
func New(rc *steward_io.RuntimeContext, ps *params.ParameterSet, plat platform.Platform) *Installer {
	return &Installer{rc: rc, ps: ps, plat: plat}
}

// Ensure converges the install stage. Re-running with an unchanged
// ParameterSet is a no-op once the desired version is present.
func (i *Installer) Ensure(st *resolver.State) error {
	logger := otelzap.Ctx(i.rc.Ctx)

	switch i.ps.InstallMethod {
	case "none":
		logger.Info("Install method none - binary management left to the host")
		return nil
	case "url":
		return i.installFromURL(st.DownloadURL)
	case "package":
		return i.installFromPackage()
	case "docker":
		return i.pullImage()
	default:
		return cerr.Newf("unknown install method %q", i.ps.InstallMethod)
	}
}

// binaryCurrent reports whether the installed binary already serves the
// desired version.
func (i *Installer) binaryCurrent() bool {
	if i.ps.Version == "" {
		return false
	}
	out, err := execute.Capture(i.rc.Ctx, i.binaryPath(), "version")
	if err != nil {
		return false
	}
	return strings.Contains(out, "v"+i.ps.Version)
}

func (i *Installer) binaryPath() string {
	return i.ps.BinDir + "/" + i.ps.PackageName
}

func (i *Installer) installFromPackage() error {
	logger := otelzap.Ctx(i.rc.Ctx)

	pkg := i.ps.PackageName
	if i.ps.Version != "" && i.ps.PackageEnsure != "latest" {
		switch i.plat.Distro {
		case "rhel":
			pkg = pkg + "-" + i.ps.Version
		default:
			pkg = pkg + "=" + i.ps.Version
		}
	}

	logger.Info("Installing Consul via package manager",
		zap.String("package", pkg),
		zap.String("distro", i.plat.Distro))

	switch i.plat.Distro {
	case "rhel":
		return execute.RunSimple(i.rc.Ctx, "dnf", "install", "-y", pkg)
	default:
		if err := execute.RunSimple(i.rc.Ctx, "apt-get", "update"); err != nil {
			logger.Warn("apt-get update failed, attempting install anyway", zap.Error(err))
		}
		return execute.RunSimple(i.rc.Ctx, "apt-get", "install", "-y", pkg)
	}
}
