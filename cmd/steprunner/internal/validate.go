package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCmd builds the "validate" subcommand: load the RunConfig, build
// its catalog, and plan each configured final step on its own, surfacing any
// config, malformed-catalog, or dependency-resolution error without
// executing anything.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a run configuration and its step catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cacheDir, _ := cmd.InheritedFlags().GetString("cache-dir")

			p, cfg, err := newPlanner(cmd.Context(), configPath, cacheDir)
			if err != nil {
				return err
			}

			for _, final := range cfg.FinalSteps {
				if _, err := p.Plan(cmd.Context(), []string{final}); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Validation successful!")
			return nil
		},
	}
	cmd.Flags().String("config", "steprunner.yaml", "Path to the run configuration file")
	return cmd
}
