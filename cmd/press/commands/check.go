package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/press/internal/app"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the content graph without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.Check(cmd.Context(), app.CheckOptions{Config: configPath(cmd)})
			if result == nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, cycle := range result.Cycles {
				_, _ = fmt.Fprintf(out, "cycle: %v\n", cycle)
			}
			for _, l := range result.BrokenLinks {
				_, _ = fmt.Fprintf(out, "broken link %s -> %s\n", l.From, l.To)
			}
			if result.OK() {
				_, _ = fmt.Fprintf(out, "%d nodes, no problems found\n", result.Nodes)
			}
			return err
		},
	}
}
