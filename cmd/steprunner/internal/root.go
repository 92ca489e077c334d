package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the steprunner command tree. cache-dir is a persistent
// flag: every subcommand that touches a GitHub-backed namespace shares the
// same checkout cache.
func NewRootCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "steprunner",
		Short: "steprunner plans and executes dependency-driven step runs",
		Long: `steprunner resolves a catalog of step classes, builds a dependency plan
for a requested set of final steps, and executes that plan either in-process
or across a pool of worker processes.`,
	}

	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCacheDir(), "Directory used to cache GitHub-backed namespace checkouts.")
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewPlanCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(newWorkerCmd())

	return cmd
}

// Execute runs the steprunner command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".steprunner/cache"
	}
	return home + "/.steprunner/cache"
}
