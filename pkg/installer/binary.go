// pkg/installer/binary.go
// Binary download and installation from the release archive URL.

package installer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// installFromURL downloads the release archive and installs the binary.
func (i *Installer) installFromURL(downloadURL string) error {
	logger := otelzap.Ctx(i.rc.Ctx)

	if i.binaryCurrent() {
		logger.Info("Consul binary already at desired version",
			zap.String("path", i.binaryPath()),
			zap.String("version", i.ps.Version))
		return nil
	}

	logger.Info("Installing Consul via direct binary download",
		zap.String("version", i.ps.Version),
		zap.String("url", downloadURL))

	tmpDir, err := os.MkdirTemp("", "steward-install-")
	if err != nil {
		return cerr.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, "consul."+i.ps.DownloadExtension)
	if _, err := execute.Run(i.rc.Ctx, execute.Options{
		Command: "wget",
		Args:    []string{"-q", "-O", archivePath, downloadURL},
		Timeout: 5 * time.Minute,
		Retries: 2,
		Delay:   3 * time.Second,
	}); err != nil {
		return cerr.Wrapf(err, "failed to download %s", downloadURL)
	}

	if err := execute.RunSimple(i.rc.Ctx, "unzip", "-o", archivePath, "-d", tmpDir); err != nil {
		return cerr.Wrap(err, "failed to extract archive")
	}

	extracted := filepath.Join(tmpDir, i.ps.PackageName)
	if _, err := os.Stat(extracted); err != nil {
		return cerr.Wrapf(err, "archive did not contain %s", i.ps.PackageName)
	}

	if err := os.MkdirAll(i.ps.BinDir, 0755); err != nil {
		return cerr.Wrapf(err, "failed to create bin dir %s", i.ps.BinDir)
	}
	if err := execute.RunSimple(i.rc.Ctx, "install", "-m", "755", extracted, i.binaryPath()); err != nil {
		return cerr.Wrap(err, "install command failed")
	}

	logger.Info("Consul binary installed",
		zap.String("path", i.binaryPath()),
		zap.String("version", i.ps.Version))
	return nil
}
