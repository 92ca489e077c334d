// Package githubsource resolves catalog namespaces of the form
// "github.com/OWNER/REPO[/PATH][@REF]" against a real GitHub repository: it
// resolves REF (defaulting to the repository's default branch) via the
// GitHub API, checks the manifest out locally, and parses a steps.yaml
// manifest at PATH into step classes whose Instance runs a shell command.
package githubsource

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v63/github"
	"gopkg.in/yaml.v3"

	"github.com/bramford/steprunner/internal/git"
	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// manifestStep is one entry of a steps.yaml manifest.
type manifestStep struct {
	Name         string   `yaml:"name"`
	Run          string   `yaml:"run"`
	Dependencies []string `yaml:"dependencies"`
	Productions  []string `yaml:"productions"`
	InitArgs     []string `yaml:"init_args"`
	Condition    string   `yaml:"condition"`
}

type manifest struct {
	Steps []manifestStep `yaml:"steps"`
}

// Enumerator is a catalog.NamespaceEnumerator backed by a checked-out GitHub
// repository manifest.
type Enumerator struct {
	Client   *github.Client
	CacheDir string
}

// New builds an Enumerator that fetches default-branch metadata through
// client and caches checkouts under cacheDir.
func New(client *github.Client, cacheDir string) *Enumerator {
	return &Enumerator{Client: client, CacheDir: cacheDir}
}

// Enumerate parses namespace, checks out the referenced repository at the
// resolved ref, reads its steps.yaml manifest, and returns one shellClass
// per manifest entry.
func (e *Enumerator) Enumerate(ctx context.Context, namespace string) ([]step.Class, error) {
	owner, repo, path, ref, err := parseNamespace(namespace)
	if err != nil {
		return nil, err
	}

	if ref == "" {
		ref, err = e.defaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
	}

	checkout, err := git.CheckoutPath(e.CacheDir, owner, repo, ref)
	if err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("checking out %s", namespace))
	}

	manifestPath := filepath.Join(checkout, path, "steps.yaml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("reading manifest for %s", namespace))
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("parsing manifest for %s", namespace))
	}

	classes := make([]step.Class, 0, len(m.Steps))
	for _, ms := range m.Steps {
		classes = append(classes, newShellClass(namespace, ms, filepath.Join(checkout, path)))
	}
	return classes, nil
}

func (e *Enumerator) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, _, err := e.Client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", runnererr.Wrap(err, runnererr.KindCatalogMalformed, fmt.Sprintf("fetching repository metadata for %s/%s", owner, repo))
	}
	return r.GetDefaultBranch(), nil
}

// parseNamespace splits "github.com/OWNER/REPO/PATH[@REF]" into its parts.
// PATH may be empty; REF defaults to "" (meaning: resolve the default
// branch).
func parseNamespace(namespace string) (owner, repo, path, ref string, err error) {
	const prefix = "github.com/"
	if !strings.HasPrefix(namespace, prefix) {
		return "", "", "", "", runnererr.New(runnererr.KindArgumentInvalid, fmt.Sprintf("namespace %q is not a github.com namespace", namespace))
	}
	rest := strings.TrimPrefix(namespace, prefix)
	if at := strings.LastIndex(rest, "@"); at != -1 {
		ref = rest[at+1:]
		rest = rest[:at]
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", "", runnererr.New(runnererr.KindArgumentInvalid, fmt.Sprintf("namespace %q must be github.com/OWNER/REPO[/PATH][@REF]", namespace))
	}
	owner, repo = parts[0], parts[1]
	if len(parts) == 3 {
		path = parts[2]
	}
	return owner, repo, path, ref, nil
}

// shellClass is a step.Class whose Instance runs Run as a shell command in
// Dir, with dependency productions and config passed as environment
// variables named STEP_<KEY>.
type shellClass struct {
	qualifiedName string
	ms            manifestStep
	dir           string
}

func newShellClass(namespace string, ms manifestStep, dir string) *shellClass {
	return &shellClass{
		qualifiedName: namespace + ":" + ms.Name,
		ms:            ms,
		dir:           dir,
	}
}

func (c *shellClass) Name() string { return c.qualifiedName }

func (c *shellClass) Dependencies() []step.Dependency {
	deps := make([]step.Dependency, len(c.ms.Dependencies))
	for i, d := range c.ms.Dependencies {
		deps[i] = step.Dependency{Name: d, Kind: "string"}
	}
	return deps
}

func (c *shellClass) Productions() []step.Production {
	prods := make([]step.Production, len(c.ms.Productions))
	for i, p := range c.ms.Productions {
		prods[i] = step.Production{Name: p, Kind: "string"}
	}
	return prods
}

func (c *shellClass) InitArgs() []step.InitArg {
	args := make([]step.InitArg, len(c.ms.InitArgs))
	for i, a := range c.ms.InitArgs {
		args[i] = step.InitArg{InitName: a, Kind: "string"}
	}
	return args
}

func (c *shellClass) Condition() string { return c.ms.Condition }

func (c *shellClass) New(args step.Args) (step.Instance, error) {
	return &shellInstance{class: c, args: args}, nil
}

type shellInstance struct {
	class       *shellClass
	args        step.Args
	lastRunTime float64
	ran         bool
}

func (i *shellInstance) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", i.class.ms.Run)
	cmd.Dir = i.class.dir
	cmd.Env = os.Environ()
	for k, v := range i.args {
		cmd.Env = append(cmd.Env, fmt.Sprintf("STEP_%s=%v", strings.ToUpper(k), v))
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return runnererr.Wrap(err, runnererr.KindWorkerFailure, fmt.Sprintf("shell step %q failed: %s", i.class.Name(), string(output)))
	}
	i.ran = true
	i.lastRunTime = float64(time.Now().Unix())
	return nil
}

func (i *shellInstance) LastRunTime() (float64, bool) {
	return i.lastRunTime, i.ran
}

func (i *shellInstance) ProductionsMap() map[string]any {
	out := make(map[string]any, len(i.class.ms.Productions))
	for _, p := range i.class.ms.Productions {
		out[p] = true
	}
	return out
}
