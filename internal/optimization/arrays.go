package optimization

import (
	"github.com/manakau-com/node-nlopt/internal/host"
)

// ToHostArray copies buf into a fresh host array of the same length.
func ToHostArray(buf []float64) *host.Array {
	return host.NumbersOf(buf...)
}

// ToNativeBuffer copies a host array of numbers into a freshly allocated
// buffer owned by the caller.
func ToNativeBuffer(v host.Value) ([]float64, error) {
	arr, ok := v.(*host.Array)
	if !ok {
		return nil, WrapErrorf(ErrNotArray, KindConversion, "expected an array of numbers, got %s", host.Describe(v))
	}
	out := make([]float64, arr.Len())
	if err := copyFromHost(out, arr); err != nil {
		return nil, err
	}
	return out, nil
}

// ToNativeBufferN is ToNativeBuffer with an exact length requirement.
func ToNativeBufferN(v host.Value, n int) ([]float64, error) {
	arr, ok := v.(*host.Array)
	if !ok {
		return nil, WrapErrorf(ErrNotArray, KindConversion, "expected an array of %d numbers, got %s", n, host.Describe(v))
	}
	if arr.Len() != n {
		return nil, WrapErrorf(ErrLengthMismatch, KindConversion, "expected %d values, got %d", n, arr.Len())
	}
	return ToNativeBuffer(arr)
}

// copyFromHost writes arr into dst. Every element is checked before the
// first write, so dst is left untouched on error.
func copyFromHost(dst []float64, arr *host.Array) error {
	if arr.Len() != len(dst) {
		return WrapErrorf(ErrLengthMismatch, KindConversion, "expected %d values, got %d", len(dst), arr.Len())
	}
	if i := firstNonNumber(arr); i >= 0 {
		return WrapErrorf(ErrNotNumeric, KindConversion, "element %d is %s", i, host.Describe(arr.Get(i)))
	}
	for i := range dst {
		dst[i], _ = host.AsNumber(arr.Get(i))
	}
	return nil
}

// firstNonNumber returns the index of the first element of arr that is not a
// number, or -1.
func firstNonNumber(arr *host.Array) int {
	for i := 0; i < arr.Len(); i++ {
		if _, ok := host.AsNumber(arr.Get(i)); !ok {
			return i
		}
	}
	return -1
}
