/* cmd/apply.go */

package cmd

import (
	"github.com/CodeMonkeyCybersecurity/steward/pkg/aclapi"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/installer"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/params"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/render"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/resolver"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_cli"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/supervisor"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Converge the host to the manifest",
	Long: `Apply resolves the manifest and walks the realization plan in order:
install the agent, render its configuration, converge the service, and
reload or restart it when the configuration changed. Declared ACL policies
and tokens are reconciled once the service is up.`,
	RunE: steward_cli.Wrap(func(rc *steward_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		ps, plat, st, err := resolveManifest(rc)
		if err != nil {
			return err
		}
		return runStages(rc, ps, plat, st)
	}),
}

// runStages executes the realization plan. Stage order is fixed; the notify
// edge decides whether a config change restarts the service immediately or
// defers to the reload stage.
func runStages(rc *steward_io.RuntimeContext, ps *params.ParameterSet, plat platform.Platform, st *resolver.State) error {
	logger := otelzap.Ctx(rc.Ctx)
	sup := supervisor.New(rc, ps, st.Identity, plat)

	var configChanged bool
	for _, stage := range st.Plan.Stages {
		logger.Info("Realizing stage", zap.String("stage", string(stage)))

		switch stage {
		case resolver.StageInstall:
			if err := installer.New(rc, ps, plat).Ensure(st); err != nil {
				return cerr.Wrap(err, "install stage failed")
			}

		case resolver.StageConfigure:
			changed, err := runConfigure(rc, ps, st, sup)
			if err != nil {
				return cerr.Wrap(err, "configure stage failed")
			}
			configChanged = changed

		case resolver.StageRunService:
			if err := sup.Converge(); err != nil {
				return cerr.Wrap(err, "run-service stage failed")
			}
			if configChanged && st.Plan.NotifiesOnConfigChange() {
				if err := sup.Restart(); err != nil {
					return cerr.Wrap(err, "restart after config change failed")
				}
			}
			if err := reconcileACLs(rc, st); err != nil {
				return cerr.Wrap(err, "ACL reconciliation failed")
			}

		case resolver.StageReloadService:
			if configChanged && !st.Plan.NotifiesOnConfigChange() {
				if err := sup.Reload(); err != nil {
					return cerr.Wrap(err, "reload-service stage failed")
				}
			}
		}
	}

	logger.Info("Apply complete", zap.Bool("config_changed", configChanged))
	return nil
}

// runConfigure realizes the configure stage and reports whether anything on
// disk changed. A rewritten systemd unit counts as a change since it only
// takes effect on restart.
func runConfigure(rc *steward_io.RuntimeContext, ps *params.ParameterSet, st *resolver.State, sup *supervisor.Supervisor) (bool, error) {
	if err := sup.EnsureDataDir(st.Derived); err != nil {
		return false, err
	}

	r := render.New(rc, ps, st.Identity)
	changed, err := r.WriteConfig(st.Config, ps.SensitiveConfig)
	if err != nil {
		return false, err
	}

	fragments := []struct {
		kind    string
		entries map[string]map[string]any
	}{
		{"service", ps.Services},
		{"check", ps.Checks},
		{"watch", ps.Watches},
	}
	for _, f := range fragments {
		fragChanged, err := r.WriteFragments(f.kind, f.entries)
		if err != nil {
			return false, err
		}
		changed = changed || fragChanged

		if ps.PurgeConfigDir {
			purged, err := r.PurgeStale(f.kind, f.entries)
			if err != nil {
				return false, err
			}
			changed = changed || purged
		}
	}

	unitChanged, err := sup.EnsureUnit(st.Derived)
	if err != nil {
		return false, err
	}
	return changed || unitChanged, nil
}

func reconcileACLs(rc *steward_io.RuntimeContext, st *resolver.State) error {
	if len(st.Acls) == 0 && len(st.Policies) == 0 && len(st.Tokens) == 0 {
		return nil
	}
	m := aclapi.New(rc)
	if err := m.EnsureACLs(st.Acls); err != nil {
		return err
	}
	if err := m.EnsurePolicies(st.Policies); err != nil {
		return err
	}
	return m.EnsureTokens(st.Tokens)
}
