package tensor

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
)

// Equal reports whether a and b have the same dtype, shape and elements.
// Floating point elements are compared bit for bit.
func Equal(a, b *RawTensor) bool {
	return a.dtype == b.dtype && a.shape.Equal(b.shape) && bytes.Equal(a.data, b.data)
}

// AllClose checks that actual matches expected in dtype and shape, and that
// every element satisfies |actual - expected| <= atol + rtol*|expected|.
// NaNs match NaNs. The returned error names the first mismatching element.
func AllClose(actual, expected *RawTensor, rtol, atol float64) error {
	if actual.dtype != expected.dtype {
		return errors.Errorf("dtype mismatch: got %s, want %s", actual.dtype, expected.dtype)
	}
	if !actual.shape.Equal(expected.shape) {
		return errors.Errorf("shape mismatch: got %v, want %v", actual.shape, expected.shape)
	}

	if !actual.dtype.IsFloat() {
		if bytes.Equal(actual.data, expected.data) {
			return nil
		}
	}

	for i := 0; i < expected.NumElements(); i++ {
		got, want := actual.Float64At(i), expected.Float64At(i)
		if math.IsNaN(got) && math.IsNaN(want) {
			continue
		}
		if math.Abs(got-want) > atol+rtol*math.Abs(want) {
			return errors.Errorf("element %v differs: got %v, want %v", unravel(i, expected.shape), got, want)
		}
	}
	return nil
}

// unravel converts a flat row-major index into per-axis coordinates.
func unravel(flat int, shape Shape) []int {
	coords := make([]int, len(shape))
	strides := shape.ComputeStrides()
	for i, s := range strides {
		if s == 0 {
			continue
		}
		coords[i] = flat / s
		flat %= s
	}
	return coords
}
