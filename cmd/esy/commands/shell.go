package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Drop into the sandbox's build environment shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, _ := cmd.Flags().GetBool("dev")
			return c.app.Shell(cmd.Context(), ".", dev)
		},
	}
}
