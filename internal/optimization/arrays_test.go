package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakau-com/node-nlopt/internal/host"
)

func TestArrayBridgeIsExact(t *testing.T) {
	values := []float64{
		0, math.Copysign(0, -1), 1, -1, 0.1, 1.0 / 3,
		math.MaxFloat64, math.SmallestNonzeroFloat64, -math.MaxFloat64,
		math.Inf(1), math.Inf(-1), 123456789.123456789,
	}

	arr := ToHostArray(values)
	require.Equal(t, len(values), arr.Len())

	back, err := ToNativeBuffer(arr)
	require.NoError(t, err)
	for i := range values {
		assert.Equal(t, math.Float64bits(values[i]), math.Float64bits(back[i]), "index %d", i)
	}

	back[0] = 99
	assert.Equal(t, 0.0, values[0], "buffers are independent")
}

func TestToNativeBufferErrors(t *testing.T) {
	tests := []struct {
		name   string
		value  host.Value
		n      int
		target error
	}{
		{"not an array", host.String("1,2"), 2, ErrNotArray},
		{"undefined", host.Undefined, 2, ErrNotArray},
		{"short", host.NumbersOf(1), 2, ErrLengthMismatch},
		{"long", host.NumbersOf(1, 2, 3), 2, ErrLengthMismatch},
		{"non-number", host.ArrayOf(host.Number(1), host.String("2")), 2, ErrNotNumeric},
		{"hole", host.NewArray(2), 2, ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := ToNativeBufferN(tt.value, tt.n)
			require.Error(t, err)
			assert.Nil(t, buf)
			assert.True(t, errors.Is(err, tt.target), err.Error())
			assert.True(t, IsKind(err, KindConversion))
		})
	}
}

func TestCopyFromHostLeavesDestinationOnError(t *testing.T) {
	dst := []float64{7, 7, 7}
	err := copyFromHost(dst, host.ArrayOf(host.Number(1), host.Number(2), host.Bool(true)))
	require.Error(t, err)
	assert.Equal(t, []float64{7, 7, 7}, dst)

	require.NoError(t, copyFromHost(dst, host.NumbersOf(1, 2, 3)))
	assert.Equal(t, []float64{1, 2, 3}, dst)
}
