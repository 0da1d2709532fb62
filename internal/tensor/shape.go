package tensor

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
// Zero-sized dimensions are legal: a tensor of shape (0,) holds no elements.
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is non-negative and that the product
// of the non-zero dimensions fits in an int, so that strides and element
// counts can be computed without overflow.
func (s Shape) Validate() error {
	n := 1
	for i, dim := range s {
		if dim < 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
		if dim == 0 {
			continue
		}
		if n > math.MaxInt/dim {
			return errors.Errorf("shape %v is too large: element count overflows int", s)
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// outerInner splits the shape around axis: outer is the product of the
// dimensions before axis, inner the product of the dimensions after it.
func (s Shape) outerInner(axis int) (outer, inner int) {
	outer, inner = 1, 1
	for i := 0; i < axis; i++ {
		outer *= s[i]
	}
	for i := axis + 1; i < len(s); i++ {
		inner *= s[i]
	}
	return outer, inner
}

// NormalizeAxis maps axis from [-rank, rank) to [0, rank).
// Returns an error wrapping ErrInvalidAxis when axis is out of range,
// which is always the case for rank 0.
func NormalizeAxis(axis, rank int) (int, error) {
	normalized := axis
	if normalized < 0 {
		normalized += rank
	}
	if normalized < 0 || normalized >= rank {
		return 0, errors.Wrapf(ErrInvalidAxis, "axis %d out of range [%d, %d)", axis, -rank, rank)
	}
	return normalized, nil
}
