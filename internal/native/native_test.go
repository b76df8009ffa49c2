package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"LN_COBYLA", LN_COBYLA, false},
		{"NLOPT_LN_COBYLA", LN_COBYLA, false},
		{"ld_mma", LD_MMA, false},
		{" NLOPT_LD_TNEWTON_PRECOND_RESTART ", LD_TNEWTON_PRECOND_RESTART, false},
		{"GN_ESCH", GN_ESCH, false},
		{"LN_SIMPLEX", -1, true},
		{"", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlgorithmNamesRoundTrip(t *testing.T) {
	algs := Algorithms()
	require.Len(t, algs, int(NUM_ALGORITHMS))

	for _, a := range algs {
		got, err := ParseAlgorithm(a.String())
		require.NoError(t, err, a.String())
		assert.Equal(t, a, got)
	}

	assert.Equal(t, "ALGORITHM(99)", Algorithm(99).String())
	assert.False(t, Algorithm(-1).Valid())
}

func TestAlgorithmTraits(t *testing.T) {
	assert.True(t, LD_MMA.NeedsGradient())
	assert.False(t, LN_COBYLA.NeedsGradient())
	assert.True(t, GD_MLSL.NeedsGradient())
	assert.True(t, GN_ISRES.Global())
	assert.True(t, G_MLSL_LDS.Global())
	assert.False(t, LN_NELDERMEAD.Global())
}

func TestResult(t *testing.T) {
	for _, r := range Results() {
		assert.NotContains(t, r.String(), "RESULT(")
		assert.Equal(t, r > 0, r.OK())
	}
	assert.Equal(t, "RESULT(42)", Result(42).String())
	assert.Equal(t, "XTOL_REACHED", XtolReached.String())
}

type stubLibrary struct{ name string }

func (s stubLibrary) Name() string { return s.name }

func (s stubLibrary) Create(Algorithm, uint) (Handle, Result) { return nil, InvalidArgs }

func TestRegistry(t *testing.T) {
	Register(stubLibrary{name: "stub-registry-test"})

	lib, err := Lookup("stub-registry-test")
	require.NoError(t, err)
	assert.Equal(t, "stub-registry-test", lib.Name())
	assert.Contains(t, Names(), "stub-registry-test")

	assert.Panics(t, func() { Register(stubLibrary{name: "stub-registry-test"}) })

	_, err = Lookup("does-not-exist")
	assert.Error(t, err)
}
