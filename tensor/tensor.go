// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/conformance/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, float16.Float16, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Errors reported by Split and axis normalization. Check them with errors.Is.
var (
	ErrInvalidAxis       = tensor.ErrInvalidAxis
	ErrInvalidSplitSizes = tensor.ErrInvalidSplitSizes
	ErrInvalidArity      = tensor.ErrInvalidArity
)

// FromSlice creates a tensor of the given shape holding a copy of data.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Values returns a copy of the tensor elements as []T.
func Values[T DType](t *RawTensor) ([]T, error) {
	return tensor.Values[T](t)
}

// NormalizeAxis maps axis from [-rank, rank) to [0, rank).
func NormalizeAxis(axis, rank int) (int, error) {
	return tensor.NormalizeAxis(axis, rank)
}

// Equal reports whether a and b have the same dtype, shape and elements.
func Equal(a, b *RawTensor) bool {
	return tensor.Equal(a, b)
}

// AllClose checks |actual - expected| <= atol + rtol*|expected| elementwise,
// after requiring matching dtype and shape.
func AllClose(actual, expected *RawTensor, rtol, atol float64) error {
	return tensor.AllClose(actual, expected, rtol, atol)
}

// Concat joins tensors along axis.
func Concat(tensors []*RawTensor, axis int) (*RawTensor, error) {
	return tensor.Concat(tensors, axis)
}
