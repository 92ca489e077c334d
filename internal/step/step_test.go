package step_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bramford/steprunner/internal/step"
)

type fakeInstance struct {
	ran         bool
	productions map[string]any
}

func (f *fakeInstance) Run(context.Context) error { f.ran = true; return nil }
func (f *fakeInstance) LastRunTime() (float64, bool) {
	if !f.ran {
		return 0, false
	}
	return 42, true
}
func (f *fakeInstance) ProductionsMap() map[string]any { return f.productions }

func TestArgsIsAPlainMap(t *testing.T) {
	args := step.Args{"a": 1, "b": "two"}
	assert.Equal(t, 1, args["a"])
	assert.Equal(t, "two", args["b"])
}

func TestInstanceContractBeforeAndAfterRun(t *testing.T) {
	inst := &fakeInstance{productions: map[string]any{"out": "value"}}

	_, ok := inst.LastRunTime()
	assert.False(t, ok)

	require := assert.New(t)
	require.NoError(inst.Run(context.Background()))

	t2, ok := inst.LastRunTime()
	assert.True(t, ok)
	assert.Equal(t, float64(42), t2)
	assert.Equal(t, "value", inst.ProductionsMap()["out"])
}
