/* cmd/root.go */

package cmd

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_cli"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var manifestPath string

// RootCmd is the base command for steward.
var RootCmd = &cobra.Command{
	Use:   "steward",
	Short: "Steward converges a single-node Consul agent from a declared manifest",
	Long: `Steward reads a declarative manifest, resolves it into a realization plan,
and converges the host: install the agent, render its configuration,
supervise the service, and reconcile ACL policies and tokens.`,
	RunE: steward_cli.Wrap(func(rc *steward_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	RootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "f", "steward.yaml",
		"path to the manifest file")

	for _, subCmd := range []*cobra.Command{
		planCmd,
		applyCmd,
		renderCmd,
		inspectCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute initializes and runs the root command.
func Execute() {
	defer func() {
		_ = logger.Sync()
	}()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if steward_err.IsExpectedUserError(err) {
			logger.L().Warn("Command completed with user error", zap.Error(err))
		} else {
			logger.L().Error("Command failed", zap.Error(err))
		}
		os.Exit(steward_err.ExitCode(err))
	}
}
