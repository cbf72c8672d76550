package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/press/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the output and the build cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gc, _ := cmd.Flags().GetBool("gc")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Config: configPath(cmd),
				GC:     gc,
			})
		},
	}

	cmd.Flags().Bool("gc", false, "Only drop cache entries no current node can use")

	return cmd
}
