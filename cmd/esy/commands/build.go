package commands

import (
	"github.com/spf13/cobra"

	"go.forge.sh/esy/internal/engine/scheduler"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the sandbox rooted at the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, _ := cmd.Flags().GetBool("dev")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			force, _ := cmd.Flags().GetBool("force")
			forceAll, _ := cmd.Flags().GetBool("force-all")
			buildOnly, _ := cmd.Flags().GetBool("build-only")

			f := scheduler.ForceNo
			switch {
			case forceAll:
				f = scheduler.ForceYes
			case force:
				f = scheduler.ForceForRoot
			}

			bo := scheduler.BuildOnlyNo
			if buildOnly {
				bo = scheduler.BuildOnlyForRoot
			}

			return c.app.Build(cmd.Context(), ".", dev, f, bo, concurrency)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Rebuild the root package unconditionally")
	cmd.Flags().Bool("force-all", false, "Rebuild every package in the graph unconditionally")
	cmd.Flags().Bool("build-only", false, "Run the root package's build commands but skip installing it")
	return cmd
}
