package commands

import (
	"github.com/spf13/cobra"

	"go.forge.sh/esy/internal/core/domain"
)

func (c *CLI) newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "exec -- <command> [args...]",
		Short:              "Run a command inside the sandbox's build environment",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, _ := c.rootCmd.PersistentFlags().GetBool("dev")
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			return c.app.Exec(cmd.Context(), ".", dev, domain.Command(args))
		},
	}
	return cmd
}
