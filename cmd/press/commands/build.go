package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/press/internal/app"
	"go.trai.ch/press/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site, recomputing only what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			since, _ := cmd.Flags().GetString("since")
			jobs, _ := cmd.Flags().GetInt("jobs")
			asJSON, _ := cmd.Flags().GetBool("json")

			report, err := c.app.Build(cmd.Context(), app.BuildOptions{
				Config:      configPath(cmd),
				Force:       force,
				Since:       since,
				Parallelism: jobs,
			})
			if report != nil {
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(report); encErr != nil {
						return encErr
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Rebuild every node, ignoring the artifact cache")
	cmd.Flags().String("since", "", "Reuse fingerprints of files unchanged since this revision")
	cmd.Flags().IntP("jobs", "j", 0, "Number of parallel jobs (default from press.yaml)")
	cmd.Flags().Bool("json", false, "Print the build report as JSON")
	return cmd
}

func printReport(w io.Writer, r *domain.BuildReport) {
	_, _ = fmt.Fprintf(w, "built %d, cached %d, failed %d, skipped %d in %s\n",
		r.Done, r.CacheHits, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		_, _ = fmt.Fprintf(w, "FAIL %s: %s\n", f.Node, f.Message)
		for _, s := range f.Skipped {
			_, _ = fmt.Fprintf(w, "  skipped %s\n", s)
		}
	}
	for _, l := range r.BrokenLinks {
		_, _ = fmt.Fprintf(w, "broken link %s -> %s\n", l.From, l.To)
	}
	if r.Cancelled {
		_, _ = fmt.Fprintln(w, "build cancelled")
	}
}
