// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API of the Split engine.
//
// # Overview
//
// Tensors are dense, row-major and untyped: a RawTensor carries a Shape, a
// DataType and its elements as little-endian bytes. This package provides:
//   - Split along any axis, with explicit sizes or equal parts
//   - Concat, the inverse of Split
//   - Exact (Equal) and tolerance based (AllClose) comparison
//
// # Basic Usage
//
//	import "github.com/born-ml/conformance/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7}, tensor.Shape{7})
//
//	    // Equal parts: sizes (3, 3, 1)
//	    parts, _ := tensor.Split(x, 0, nil, 3)
//
//	    // Explicit sizes
//	    parts, _ = tensor.Split(x, 0, []int{2, 5}, 0)
//
//	    // Round trip
//	    y, _ := tensor.Concat(parts, 0)
//	}
//
// # Supported Data Types
//
// The DType constraint covers:
//   - float32, float64, float16.Float16 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool (boolean masks)
//
// Split copies bytes and never looks at element values, so every data type
// is handled the same way.
//
// # Errors
//
// Failures wrap one of ErrInvalidAxis, ErrInvalidSplitSizes or
// ErrInvalidArity; test for them with errors.Is.
package tensor
