/* cmd/plan.go */

package cmd

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_cli"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve the manifest and show the realization plan",
	Long: `Plan resolves the manifest without touching the host and prints the
stages that apply would run, the resolved identity, and the download
source when the install method needs one.`,
	RunE: steward_cli.Wrap(func(rc *steward_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		ps, plat, st, err := resolveManifest(rc)
		if err != nil {
			return err
		}

		fmt.Printf("manifest:       %s\n", manifestPath)
		fmt.Printf("platform:       %s/%s (%s)\n", plat.OS, plat.Arch, plat.Distro)
		fmt.Printf("install method: %s\n", ps.InstallMethod)
		if st.DownloadURL != "" {
			fmt.Printf("download url:   %s\n", st.DownloadURL)
		}
		if st.Identity.Manage {
			fmt.Printf("identity:       %s:%s (init %s)\n",
				st.Identity.User, st.Identity.Group, st.Identity.InitStyle)
		} else {
			fmt.Println("identity:       unmanaged")
		}
		fmt.Printf("policies:       %d declared\n", len(st.Policies))
		fmt.Printf("tokens:         %d declared\n", len(st.Tokens))
		fmt.Println()
		fmt.Print(st.Plan.String())
		return nil
	}),
}
