package internal

import (
	"context"
	"os"
	"os/exec"

	"github.com/bramford/steprunner/internal/catalog/githubsource"
	"github.com/bramford/steprunner/internal/config"
	"github.com/bramford/steprunner/internal/planner"
)

// newPlanner builds a Planner from the RunConfig at configPath, using
// cacheDir for GitHub-backed namespace checkouts and a WorkerCmd that
// re-invokes this binary's hidden "__step-worker" subcommand (with the same
// config and cache-dir) to dispatch worker processes in parallel mode.
func newPlanner(ctx context.Context, configPath, cacheDir string) (*planner.Planner, *config.RunConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	opts := planner.Options{
		StepNamespaces: cfg.Namespaces,
		Jobs:           cfg.Jobs,
		Enumerator:     githubsource.New(githubClient(), cacheDir),
		WorkerCmd: func(ctx context.Context) *exec.Cmd {
			return exec.CommandContext(ctx, os.Args[0], "__step-worker", "--config", configPath, "--cache-dir", cacheDir)
		},
	}

	p, err := planner.New(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}
