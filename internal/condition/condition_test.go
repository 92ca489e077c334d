package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramford/steprunner/internal/condition"
	"github.com/bramford/steprunner/internal/runnererr"
)

func TestEmptyExpressionIsAlwaysEligible(t *testing.T) {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)

	eligible, err := ev.Eligible("", nil, nil)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestExpressionReadsConfigAndProductions(t *testing.T) {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)

	eligible, err := ev.Eligible(`config["enabled"] == true && productions["built"] == "yes"`,
		map[string]any{"enabled": true},
		map[string]any{"built": "yes"})
	require.NoError(t, err)
	assert.True(t, eligible)

	eligible, err = ev.Eligible(`config["enabled"] == true`, map[string]any{"enabled": false}, nil)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestNonBooleanResultIsConditionInvalid(t *testing.T) {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)

	_, err = ev.Eligible(`"not a bool"`, nil, nil)
	require.Error(t, err)
	assert.True(t, runnererr.Is(err, runnererr.KindConditionInvalid))
}

func TestUncompilableExpressionIsConditionInvalid(t *testing.T) {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)

	_, err = ev.Eligible(`this is not valid cel ===`, nil, nil)
	require.Error(t, err)
	assert.True(t, runnererr.Is(err, runnererr.KindConditionInvalid))
}

func TestCompiledProgramIsCachedAcrossCalls(t *testing.T) {
	ev, err := condition.NewEvaluator()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		eligible, err := ev.Eligible(`true`, nil, nil)
		require.NoError(t, err)
		assert.True(t, eligible)
	}
}
