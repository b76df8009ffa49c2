package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakau-com/node-nlopt/internal/host"
)

func numbersOf(t *testing.T, v host.Value) []float64 {
	t.Helper()
	arr, ok := v.(*host.Array)
	require.True(t, ok, "not an array: %s", host.Describe(v))
	out := make([]float64, arr.Len())
	for i := range out {
		f, ok := host.AsNumber(arr.Get(i))
		require.True(t, ok)
		out[i] = f
	}
	return out
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"scalar", Spec{Value: "x0 * x0"}, true},
		{"vector", Spec{Values: []string{"x0 - 1", "x1 - 2"}}, true},
		{"empty", Spec{}, false},
		{"both", Spec{Value: "x0", Values: []string{"x0"}}, false},
		{"blank value in vector", Spec{Values: []string{"x0", ""}}, false},
		{"empty vector", Spec{Values: []string{}}, false},
		{"syntax", Spec{Value: "x0 +* 2"}, false},
		{"unknown variable", Spec{Value: "y + 1"}, false},
		{"leading zero index", Spec{Value: "x01"}, false},
		{"unknown function", Spec{Value: "gamma(x0)"}, false},
		{"constants", Spec{Value: "pi * e + n + m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.spec)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, host.KindFunction, f.Kind())
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestScalarCall(t *testing.T) {
	f, err := Compile(Spec{
		Value:    "sqrt(x1)",
		Gradient: []string{"0", "0.5 / sqrt(x1)"},
	})
	require.NoError(t, err)

	grad := host.NumbersOf(9, 9)
	out, err := f.Call(host.Number(2), host.NumbersOf(1.234, 4), grad)
	require.NoError(t, err)
	assert.Equal(t, host.Number(2), out)
	assert.Equal(t, []float64{0, 0.25}, numbersOf(t, grad))

	out, err = f.Call(host.Number(2), host.NumbersOf(1, 16), host.Null)
	require.NoError(t, err)
	assert.Equal(t, host.Number(4), out)
}

func TestScalarFiniteDifferenceGradient(t *testing.T) {
	f, err := Compile(Spec{Value: "pow(x0, 2) + 3 * x1"})
	require.NoError(t, err)

	grad := host.NumbersOf(0, 0)
	_, err = f.Call(host.Number(2), host.NumbersOf(2, -1), grad)
	require.NoError(t, err)

	g := numbersOf(t, grad)
	assert.InDelta(t, 4, g[0], 1e-6)
	assert.InDelta(t, 3, g[1], 1e-6)
}

func TestVectorCall(t *testing.T) {
	// The two cubic constraints of the classic MMA tutorial problem.
	f, err := Compile(Spec{
		Values: []string{
			"pow(2 * x0 + 0, 3) - x1",
			"pow(1 - x0, 3) - x1",
		},
		Gradient: []string{
			"3 * 2 * pow(2 * x0 + 0, 2)", "-1",
			"-3 * pow(1 - x0, 2)", "-1",
		},
	})
	require.NoError(t, err)
	require.True(t, f.Vector())

	grad := host.NewArray(4)
	out, err := f.Call(host.Number(2), host.Number(2), host.NumbersOf(0.5, 1), grad)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -0.875}, numbersOf(t, out))
	assert.Equal(t, []float64{6, -1, -0.75, -1}, numbersOf(t, grad))
}

func TestVectorFiniteDifferenceGradient(t *testing.T) {
	f, err := Compile(Spec{Values: []string{"x0 * x1", "x0 + 2 * x1", "m + n"}})
	require.NoError(t, err)

	grad := host.NewArray(6)
	out, err := f.Call(host.Number(3), host.Number(2), host.NumbersOf(3, 5), grad)
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 13, 5}, numbersOf(t, out))

	want := []float64{5, 3, 1, 2, 0, 0}
	got := numbersOf(t, grad)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "entry %d", i)
	}
}

func TestCallErrors(t *testing.T) {
	scalar, err := Compile(Spec{Value: "x0 + x1"})
	require.NoError(t, err)

	_, err = scalar.Call(host.Number(1), host.NumbersOf(1), host.Null)
	assert.Error(t, err, "x1 is not bound for n = 1")

	_, err = scalar.Call(host.Number(1))
	assert.Error(t, err)

	_, err = scalar.Call(host.Number(2), host.ArrayOf(host.Number(1), host.String("a")), host.Null)
	assert.Error(t, err)

	withGrad, err := Compile(Spec{Value: "x0", Gradient: []string{"1", "2"}})
	require.NoError(t, err)
	_, err = withGrad.Call(host.Number(1), host.NumbersOf(1), host.NumbersOf(0))
	assert.Error(t, err, "gradient length must match n")
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"abs(-2)", 2},
		{"max(1, x0, 3)", 5},
		{"min(4, x0)", 4},
		{"hypot(3, 4)", 5},
		{"erfc(0)", 1},
		{"sign(0 - x0)", -1},
		{"floor(2.7) + ceil(2.2)", 5},
		{"x0 > 4 ? 1 : 0", 1},
		{"x0 ** 2", 25},
		{"log(exp(x0))", 5},
		{"cos(pi)", -1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := Compile(Spec{Value: tt.src})
			require.NoError(t, err)
			out, err := f.Call(host.Number(1), host.NumbersOf(5), host.Null)
			require.NoError(t, err)
			v, _ := host.AsNumber(out)
			assert.InDelta(t, tt.want, v, 1e-12)
		})
	}

	f, err := Compile(Spec{Value: "x0 / 0"})
	require.NoError(t, err)
	out, err := f.Call(host.Number(1), host.NumbersOf(1), host.Null)
	require.NoError(t, err)
	v, _ := host.AsNumber(out)
	assert.True(t, math.IsInf(v, 1))
}
