package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/press/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the site whenever a source changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, _ := cmd.Flags().GetInt("jobs")
			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Config:      configPath(cmd),
				Parallelism: jobs,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Number of parallel jobs (default from press.yaml)")
	return cmd
}
