package executor

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bramford/steprunner/internal/runnererr"
	"github.com/bramford/steprunner/internal/step"
)

// WorkerRequest is the YAML message a worker process reads from stdin: the
// class to build and run, and the constructor arguments the coordinator
// already resolved (config projection + upstream productions).
type WorkerRequest struct {
	ClassName string    `yaml:"class_name"`
	Args      step.Args `yaml:"args"`
}

// WorkerResponse is the YAML message a worker process writes to stdout on
// success: the step's post-run observables. Productions crossing this
// boundary must be YAML-serializable; values that cannot round-trip are a
// user error the core does not attempt to detect.
type WorkerResponse struct {
	HasLastRunTime bool           `yaml:"has_last_run_time"`
	LastRunTime    float64        `yaml:"last_run_time"`
	Productions    map[string]any `yaml:"productions"`
}

// ClassResolver looks a fully qualified class name up in whatever catalog
// the calling process built. The worker subprocess is the same binary
// re-invoked, so it rebuilds an identical catalog and uses the same
// resolver shape the coordinator used.
type ClassResolver func(name string) (step.Class, bool)

// RunWorker is the worker-process entrypoint: read one WorkerRequest from r,
// resolve its class, build and run an instance, and write one
// WorkerResponse to w. The caller (cmd/steprunner's hidden worker
// subcommand) is responsible for translating a returned error into a
// non-zero process exit.
func RunWorker(ctx context.Context, r io.Reader, w io.Writer, resolve ClassResolver) error {
	var req WorkerRequest
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return runnererr.Wrap(err, runnererr.KindArgumentInvalid, "decoding worker request")
	}

	class, ok := resolve(req.ClassName)
	if !ok {
		return runnererr.New(runnererr.KindCatalogMalformed, fmt.Sprintf("worker process does not recognize class %q", req.ClassName))
	}

	instance, err := class.New(req.Args)
	if err != nil {
		return runnererr.Wrap(err, runnererr.KindArgumentInvalid, fmt.Sprintf("constructing %q in worker process", req.ClassName))
	}

	if err := instance.Run(ctx); err != nil {
		return err
	}

	lastRunTime, hasLastRunTime := instance.LastRunTime()
	resp := WorkerResponse{
		HasLastRunTime: hasLastRunTime,
		LastRunTime:    lastRunTime,
		Productions:    instance.ProductionsMap(),
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(resp); err != nil {
		return runnererr.Wrap(err, runnererr.KindArgumentInvalid, "encoding worker response")
	}
	return nil
}
