package internal

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bramford/steprunner/internal/catalog"
	"github.com/bramford/steprunner/internal/catalog/githubsource"
	"github.com/bramford/steprunner/internal/config"
	"github.com/bramford/steprunner/internal/executor"
	"github.com/bramford/steprunner/internal/step"
)

// newWorkerCmd builds the hidden "__step-worker" subcommand that the
// Planner's default WorkerCmd factory re-invokes the coordinator's own
// binary with. It rebuilds the same catalog the coordinator built, then
// decodes one WorkerRequest from stdin and writes one WorkerResponse to
// stdout, per internal/executor's wire contract.
func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "__step-worker",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cacheDir, _ := cmd.InheritedFlags().GetString("cache-dir")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			enumerator := githubsource.New(githubClient(), cacheDir)
			cat, err := catalog.Build(cmd.Context(), cfg.Namespaces, enumerator)
			if err != nil {
				return err
			}

			index := make(map[string]step.Class, len(cat.Classes()))
			for _, c := range cat.Classes() {
				index[c.Name()] = c
			}
			resolve := func(name string) (step.Class, bool) {
				c, ok := index[name]
				return c, ok
			}

			return executor.RunWorker(cmd.Context(), os.Stdin, os.Stdout, resolve)
		},
	}
	cmd.Flags().String("config", "steprunner.yaml", "Path to the run configuration file")
	return cmd
}
