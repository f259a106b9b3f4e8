/* cmd/inspect.go */

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/drift"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_cli"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_err"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show drift between the manifest and the on-disk configuration",
	Long: `Inspect resolves the manifest and diffs the desired agent configuration
against the config file on disk. Exit status 2 means drift was found.`,
	RunE: steward_cli.Wrap(func(rc *steward_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		ps, _, st, err := resolveManifest(rc)
		if err != nil {
			return err
		}

		path := filepath.Join(ps.ConfigDir, ps.ConfigName)
		report, err := drift.Inspect(rc, st.Config, path)
		if err != nil {
			return err
		}

		if inspectJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		} else {
			fmt.Print(report.String())
		}

		if !report.InSync() {
			return steward_err.NewExpectedError(cerr.Newf("%d setting(s) drifted", len(report.Changes)))
		}
		return nil
	}),
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the drift report as JSON")
}
