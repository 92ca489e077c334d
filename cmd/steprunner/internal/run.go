package internal

import (
	"github.com/spf13/cobra"

	"github.com/bramford/steprunner/internal/planner"
)

// NewRunCmd builds the "run" subcommand: load a RunConfig, build its
// catalog, plan its final steps, and execute that plan to completion.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a run to completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cacheDir, _ := cmd.InheritedFlags().GetString("cache-dir")

			p, cfg, err := newPlanner(cmd.Context(), configPath, cacheDir)
			if err != nil {
				return err
			}

			return p.Run(cmd.Context(), planner.RunOptions{
				FinalSteps: cfg.FinalSteps,
				Config:     cfg.Config,
			})
		},
	}
	cmd.Flags().String("config", "steprunner.yaml", "Path to the run configuration file")
	return cmd
}
