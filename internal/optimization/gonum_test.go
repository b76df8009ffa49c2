package optimization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native/gonumopt"
)

func TestOptimizeWithGonumBackend(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
	}{
		{"derivative free", "LN_NELDERMEAD"},
		{"gradient based", "LD_LBFGS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(tt.algorithm, 2).
				Set("xToleranceRelative", host.Number(1e-8)).
				Set("initialGuess", host.NumbersOf(10, 10))

			res, err := newTestOptimizer(t, gonumopt.New()).Optimize(context.Background(), cfg)
			require.NoError(t, err)

			entry, ok := res.Status.Get("status")
			require.True(t, ok)
			assert.True(t, entry.Success, entry.Message)
			assert.True(t, res.Status.OK(), "%v", res.Status.Map())
			assert.InDelta(t, 0, res.OutputValue, 1e-6)
			require.Len(t, res.ParameterValues, 2)
			assert.InDelta(t, 0, res.ParameterValues[0], 1e-3)
			assert.InDelta(t, 0, res.ParameterValues[1], 1e-3)
			assert.Positive(t, res.Stats.Evaluations)
		})
	}
}

func TestOptimizeWithGonumBoundMismatch(t *testing.T) {
	cfg := baseConfig("LN_NELDERMEAD", 3).
		Set("lowerBounds", host.NumbersOf(0, 0)).
		Set("upperBounds", host.NumbersOf(1, 1, 1)).
		Set("initialGuess", host.NumbersOf(0.5, 0.5, 0.5))

	res, err := newTestOptimizer(t, gonumopt.New()).Optimize(context.Background(), cfg)
	require.NoError(t, err)

	entry, ok := res.Status.Get("lowerBounds")
	require.True(t, ok)
	assert.False(t, entry.Success)
	assert.Contains(t, entry.Message, "ConversionError")

	entry, ok = res.Status.Get("status")
	require.True(t, ok)
	assert.True(t, entry.Success, entry.Message)
	assert.InDelta(t, 0, res.OutputValue, 1e-6)
}

func TestOptimizeWithGonumMaxEval(t *testing.T) {
	cfg := baseConfig("LN_NELDERMEAD", 2).
		Set("maxEval", host.Number(15)).
		Set("initialGuess", host.NumbersOf(10, 10))

	res, err := newTestOptimizer(t, gonumopt.New()).Optimize(context.Background(), cfg)
	require.NoError(t, err)

	entry, _ := res.Status.Get("status")
	assert.Equal(t, "Success: Optimization stopped because maxEval was reached", entry.Message)
	assert.EqualValues(t, 15, res.Stats.Evaluations)
}

func TestOptimizeWithGonumFromOptimum(t *testing.T) {
	for _, algorithm := range []string{"LD_LBFGS", "LD_MMA", "LD_SLSQP"} {
		t.Run(algorithm, func(t *testing.T) {
			cfg := baseConfig(algorithm, 2).
				Set("xToleranceRelative", host.Number(1e-8)).
				Set("initialGuess", host.NumbersOf(0, 0))

			res, err := newTestOptimizer(t, gonumopt.New()).Optimize(context.Background(), cfg)
			require.NoError(t, err)

			entry, ok := res.Status.Get("status")
			require.True(t, ok)
			assert.True(t, entry.Success, entry.Message)
			assert.Equal(t, 0.0, res.OutputValue)
			assert.Equal(t, []float64{0, 0}, res.ParameterValues)
		})
	}
}
