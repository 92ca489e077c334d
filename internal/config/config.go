// Package config loads the YAML run configuration a CLI invocation or
// embedding application uses to drive a Planner.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bramford/steprunner/internal/runnererr"
)

// RunConfig is the YAML document describing one run: which namespaces to
// enumerate, which steps to treat as final, how many worker processes to
// use, and the free-form config map forwarded as constructor arguments.
type RunConfig struct {
	Version    string         `yaml:"version"`
	Namespaces []string       `yaml:"namespaces"`
	FinalSteps []string       `yaml:"final_steps"`
	Jobs       int            `yaml:"jobs,omitempty"`
	Config     map[string]any `yaml:"config,omitempty"`
}

// Load reads and parses the RunConfig at path, then validates it.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindArgumentInvalid, fmt.Sprintf("reading config %q", path))
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindArgumentInvalid, fmt.Sprintf("parsing config %q", path))
	}

	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants Load and the CLI both rely on:
// at least one namespace, at least one final step, and a worker width of at
// least one.
func (c *RunConfig) Validate() error {
	if len(c.Namespaces) == 0 {
		return runnererr.New(runnererr.KindArgumentInvalid, "config must declare at least one namespace")
	}
	if len(c.FinalSteps) == 0 {
		return runnererr.New(runnererr.KindArgumentInvalid, "config must declare at least one final step")
	}
	if c.Jobs < 1 {
		return runnererr.New(runnererr.KindArgumentInvalid, "jobs must be >= 1")
	}
	return nil
}
