// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/conformance/internal/parallel"
	"github.com/born-ml/conformance/internal/tensor"
)

// Split partitions x along axis into contiguous pieces.
//
// With sizes non-empty, piece i has sizes[i] elements along axis; sizes must
// be non-negative and sum to the axis extent. With sizes empty, numOutputs
// pieces are produced by the equal-parts policy (see EqualParts). When both
// are given, numOutputs must equal len(sizes) or be 0.
//
// Every output is a fresh tensor sharing no memory with x.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	parts, _ := tensor.Split(x, -1, []int{1, 2}, 0)
//	// parts[0]: (2, 1) [1 4], parts[1]: (2, 2) [2 3 5 6]
func Split(x *RawTensor, axis int, sizes []int, numOutputs int) ([]*RawTensor, error) {
	return tensor.Split(x, axis, sizes, numOutputs)
}

// SplitParallel is Split with the copy fanned out over the rows before axis
// using workers goroutines.
func SplitParallel(x *RawTensor, axis int, sizes []int, numOutputs, workers int) ([]*RawTensor, error) {
	cfg := parallel.DefaultConfig()
	cfg.Enabled = workers > 1
	cfg.NumWorkers = workers
	return tensor.SplitWith(x, axis, sizes, numOutputs, cfg)
}

// EqualParts returns k sizes summing to n: the first k-1 are ceil(n/k) and
// the last takes the remainder. Fails with ErrInvalidArity when k <= 0 or the
// remainder would be negative.
func EqualParts(n, k int) ([]int, error) {
	return tensor.EqualParts(n, k)
}
