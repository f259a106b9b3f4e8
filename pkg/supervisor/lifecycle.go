// pkg/supervisor/lifecycle.go
// Service lifecycle operations (enable, start, stop, restart, reload).

package supervisor

import (
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Converge brings the service to the declared state: enabled when
// service_enable is set, running or stopped per service_ensure.
func (s *Supervisor) Converge() error {
	logger := otelzap.Ctx(s.rc.Ctx)

	if !s.managed() {
		logger.Info("Init style not managed, service state left to the host",
			zap.String("init", string(s.id.InitStyle)))
		return nil
	}

	if s.ps.ServiceEnable {
		if err := s.systemctl("enable"); err != nil {
			return err
		}
	} else {
		if err := s.systemctl("disable"); err != nil {
			return err
		}
	}

	switch s.ps.ServiceEnsure {
	case "stopped":
		return s.Stop()
	default:
		return s.Start()
	}
}

// Start starts the service and waits for it to settle.
func (s *Supervisor) Start() error {
	logger := otelzap.Ctx(s.rc.Ctx)
	logger.Info("Starting service", zap.String("service", s.ps.ServiceName))

	if err := s.systemctl("start"); err != nil {
		if status, statusErr := s.Status(); statusErr == nil {
			logger.Error("Failed to start service", zap.String("status", status))
		}
		return err
	}
	return s.waitForActive(30 * time.Second)
}

// Stop stops the service.
func (s *Supervisor) Stop() error {
	otelzap.Ctx(s.rc.Ctx).Info("Stopping service", zap.String("service", s.ps.ServiceName))
	return s.systemctl("stop")
}

// Restart restarts the service. Used for config convergence when
// restart_on_change is set.
func (s *Supervisor) Restart() error {
	logger := otelzap.Ctx(s.rc.Ctx)

	if !s.managed() {
		logger.Info("Init style not managed, skipping restart",
			zap.String("init", string(s.id.InitStyle)))
		return nil
	}

	logger.Info("Restarting service", zap.String("service", s.ps.ServiceName))
	if err := s.systemctl("restart"); err != nil {
		return err
	}
	return s.waitForActive(30 * time.Second)
}

// Reload asks the agent to re-read its configuration without a restart.
// Consul handles SIGHUP itself, so this maps to systemctl reload via the
// unit's ExecReload.
func (s *Supervisor) Reload() error {
	logger := otelzap.Ctx(s.rc.Ctx)

	if !s.managed() {
		logger.Info("Init style not managed, skipping reload",
			zap.String("init", string(s.id.InitStyle)))
		return nil
	}

	logger.Info("Reloading service configuration", zap.String("service", s.ps.ServiceName))
	return s.systemctl("reload")
}

// IsActive reports whether systemd considers the service active.
func (s *Supervisor) IsActive() bool {
	out, err := execute.Capture(s.rc.Ctx, "systemctl", "is-active", s.ps.ServiceName)
	return err == nil && strings.TrimSpace(out) == "active"
}

// Status returns the systemctl status output for diagnostics.
func (s *Supervisor) Status() (string, error) {
	return execute.Capture(s.rc.Ctx, "systemctl", "status", s.ps.ServiceName, "--no-pager")
}

func (s *Supervisor) systemctl(verb string) error {
	if err := execute.RunSimple(s.rc.Ctx, "systemctl", verb, s.ps.ServiceName); err != nil {
		return cerr.Wrapf(err, "systemctl %s %s failed", verb, s.ps.ServiceName)
	}
	return nil
}

func (s *Supervisor) waitForActive(timeout time.Duration) error {
	logger := otelzap.Ctx(s.rc.Ctx)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if s.IsActive() {
			logger.Info("Service is active", zap.String("service", s.ps.ServiceName))
			return nil
		}
		<-ticker.C
	}
	return cerr.Newf("service %s did not become active within %s", s.ps.ServiceName, timeout)
}
