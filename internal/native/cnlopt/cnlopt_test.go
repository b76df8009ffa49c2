//go:build nlopt && cgo

package cnlopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakau-com/node-nlopt/internal/native"
)

func TestSphere(t *testing.T) {
	h, code := Library{}.Create(native.LD_MMA, 2)
	require.Equal(t, native.Success, code)
	defer h.Destroy()

	require.Equal(t, native.Success, h.SetObjective(native.Minimize, func(x, grad []float64) float64 {
		if grad != nil {
			grad[0], grad[1] = 2*x[0], 2*x[1]
		}
		return x[0]*x[0] + x[1]*x[1]
	}))
	require.Equal(t, native.Success, h.SetTolerance(native.XTolRel, 1e-8))

	x := []float64{10, 10}
	code, f := h.Optimize(x)
	assert.True(t, code.OK(), "code %s", code)
	assert.InDelta(t, 0, f, 1e-8)
}

func TestForceStop(t *testing.T) {
	h, code := Library{}.Create(native.LN_NELDERMEAD, 1)
	require.Equal(t, native.Success, code)
	defer h.Destroy()

	var calls int
	h.SetObjective(native.Minimize, func(x, grad []float64) float64 {
		calls++
		h.ForceStop()
		return x[0] * x[0]
	})

	code, _ = h.Optimize([]float64{1})
	assert.Equal(t, native.ForcedStop, code)
	assert.Equal(t, 1, calls)
}

func TestVersion(t *testing.T) {
	major, _, _ := Version()
	assert.Positive(t, major)
}
