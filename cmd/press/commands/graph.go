package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/press/internal/app"
)

func (c *CLI) newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the content graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			return c.app.Graph(cmd.Context(), cmd.OutOrStdout(), app.GraphOptions{
				Config: configPath(cmd),
				Format: format,
			})
		},
	}
	cmd.Flags().String("format", app.FormatText, "Output format: text or dot")
	return cmd
}
