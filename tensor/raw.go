// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/conformance/internal/tensor"
)

// RawTensor is a dense, row-major, untyped tensor.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Strides()
//   - Typed views via AsFloat32(), AsInt64(), AsFloat16(), etc.
//   - The underlying little-endian bytes via Data()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32()  // Typed view, writes go to the tensor
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}
