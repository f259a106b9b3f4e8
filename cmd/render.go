/* cmd/render.go */

package cmd

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_cli"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the resolved agent configuration",
	Long: `Render resolves the manifest and prints the merged agent configuration
as it would be written to disk. Sensitive values are omitted; they are
only ever merged into the real config file during apply.`,
	RunE: steward_cli.Wrap(func(rc *steward_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		ps, _, st, err := resolveManifest(rc)
		if err != nil {
			return err
		}

		indent := 0
		if ps.PrettyConfig {
			indent = ps.PrettyConfigIndent
		}
		fmt.Print(string(st.Config.RenderJSON(indent)))
		return nil
	}),
}
