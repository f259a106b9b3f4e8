/* cmd/resolve.go */

package cmd

import (
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// resolveManifest runs the shared front half of every subcommand: load and
// validate the manifest, detect the platform, and resolve.
func resolveManifest(rc *steward_io.RuntimeContext) (*params.ParameterSet, platform.Platform, *resolver.State, error) {
	logger := otelzap.Ctx(rc.Ctx)

	plat := platform.Detect()
	logger.Debug("Platform detected",
		zap.String("os", plat.OS),
		zap.String("distro", plat.Distro),
		zap.String("arch", plat.Arch))

	ps, err := params.Load(rc, manifestPath, plat)
	if err != nil {
		return nil, plat, nil, err
	}

	st, err := resolver.New(ps, plat).Resolve()
	if err != nil {
		return nil, plat, nil, err
	}
	return ps, plat, st, nil
}
