package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlanCmd builds the "plan" subcommand: resolve the catalog and print the
// step-set partition for the configured final steps without running
// anything.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the step-set partition for a run without executing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cacheDir, _ := cmd.InheritedFlags().GetString("cache-dir")

			p, cfg, err := newPlanner(cmd.Context(), configPath, cacheDir)
			if err != nil {
				return err
			}

			built, err := p.Plan(cmd.Context(), cfg.FinalSteps)
			if err != nil {
				return err
			}

			for i, set := range built.Sets {
				fmt.Fprintf(cmd.OutOrStdout(), "set %d:\n", i)
				for _, c := range set {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c.Name())
				}
			}
			return nil
		},
	}
	cmd.Flags().String("config", "steprunner.yaml", "Path to the run configuration file")
	return cmd
}
