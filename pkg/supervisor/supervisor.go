// pkg/supervisor/supervisor.go
//
// Service supervision for the run-service and reload-service stages. Systemd
// is the only init style managed directly; sysv, launchd, and unmanaged hosts
// get log-and-skip semantics so the realization plan still completes.

package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const systemdUnitDir = "/etc/systemd/system"

// Supervisor manages the Consul service process through the host init
// system.
type Supervisor struct {
	rc   *steward_io.RuntimeContext
	ps   *params.ParameterSet
	id   resolver.Identity
	plat platform.Platform

	// unitDir is overridable for tests.
	unitDir string
}

// New creates a supervisor for the resolved identity context.
func New(rc *steward_io.RuntimeContext, ps *params.ParameterSet, id resolver.Identity, plat platform.Platform) *Supervisor {
	return &Supervisor{rc: rc, ps: ps, id: id, plat: plat, unitDir: systemdUnitDir}
}

// managed reports whether this host's init system is one we drive. Docker
// installs resolve to an unmanaged identity, and non-systemd init styles are
// observed but not converged.
func (s *Supervisor) managed() bool {
	return s.id.InitStyle == platform.InitSystemd
}

func (s *Supervisor) unitPath() string {
	return filepath.Join(s.unitDir, s.ps.ServiceName+".service")
}

// EnsureDataDir creates the agent data directory when the merged config
// declares one, owned by the service identity.
func (s *Supervisor) EnsureDataDir(d resolver.Derived) error {
	if !d.DataDir.Set {
		return nil
	}
	logger := otelzap.Ctx(s.rc.Ctx)

	if err := os.MkdirAll(d.DataDir.Value, 0750); err != nil {
		return cerr.Wrapf(err, "failed to create data dir %s", d.DataDir.Value)
	}
	if s.id.Manage {
		owner := s.id.User + ":" + s.id.Group
		if err := execute.RunSimple(s.rc.Ctx, "chown", owner, d.DataDir.Value); err != nil {
			return cerr.Wrapf(err, "failed to chown data dir to %s", owner)
		}
	}
	logger.Debug("Data directory present", zap.String("path", d.DataDir.Value))
	return nil
}

// EnsureUnit renders the systemd unit for the agent and reloads the daemon
// when the unit changed. Returns whether the unit file was rewritten.
func (s *Supervisor) EnsureUnit(d resolver.Derived) (bool, error) {
	logger := otelzap.Ctx(s.rc.Ctx)

	if !s.managed() {
		logger.Info("Init style not managed, skipping unit file",
			zap.String("init", string(s.id.InitStyle)))
		return false, nil
	}

	content := []byte(s.renderUnit(d))
	path := s.unitPath()

	if existing, err := os.ReadFile(path); err == nil {
		if string(existing) == string(content) {
			logger.Debug("Systemd unit unchanged", zap.String("path", path))
			return false, nil
		}
		// Keep a copy of the old unit so a hand-edited one can be recovered.
		backup := fmt.Sprintf("%s.backup.%d", path, time.Now().Unix())
		if err := os.WriteFile(backup, existing, 0644); err != nil {
			logger.Warn("Failed to back up existing unit file, continuing anyway",
				zap.Error(err))
		} else {
			logger.Info("Backed up existing unit file", zap.String("backup", backup))
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, cerr.Wrapf(err, "failed to write unit file %s", path)
	}
	if err := execute.RunSimple(s.rc.Ctx, "systemctl", "daemon-reload"); err != nil {
		return false, cerr.Wrap(err, "systemctl daemon-reload failed")
	}

	logger.Info("Systemd unit written", zap.String("path", path))
	return true, nil
}

func (s *Supervisor) renderUnit(d resolver.Derived) string {
	binary := filepath.Join(s.ps.BinDir, s.ps.PackageName)
	httpAddr := fmt.Sprintf("%s:%d", d.HTTPAddr, d.HTTPPort)

	return fmt.Sprintf(`[Unit]
Description=Consul Service Discovery and Configuration
Documentation=https://www.consul.io/
Requires=network-online.target
After=network-online.target

[Service]
Type=simple
User=%s
Group=%s
ExecStart=%s agent -config-dir=%s
ExecReload=/bin/kill -HUP $MAINPID
ExecStop=%s leave
KillMode=process
Restart=on-failure
RestartSec=5
LimitNOFILE=65536
Environment="CONSUL_HTTP_ADDR=%s"
TimeoutStartSec=60

[Install]
WantedBy=multi-user.target
`, s.id.User, s.id.Group, binary, s.ps.ConfigDir, binary, httpAddr)
}
