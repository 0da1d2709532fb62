package tensor

import (
	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/parallel"
)

// EqualParts returns the segment lengths of the equal-parts policy: n elements
// divided into k outputs, every output except the last holding ceil(n/k)
// elements and the last holding the remainder n - (k-1)*ceil(n/k).
//
// The remainder may be zero (for example n=2, k=3 gives [1, 1, 0]) but never
// negative: when k is larger than n can support even with a zero-sized last
// segment, EqualParts fails with ErrInvalidArity.
//
// Example:
//
//	EqualParts(6, 3) // [2, 2, 2]
//	EqualParts(7, 4) // [2, 2, 2, 1]
//	EqualParts(0, 3) // [0, 0, 0]
func EqualParts(n, k int) ([]int, error) {
	if k <= 0 {
		return nil, errors.Wrapf(ErrInvalidArity, "output count must be positive, got %d", k)
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidSplitSizes, "negative extent %d", n)
	}

	base := n / k
	if n%k != 0 {
		base++
	}
	// (k-1)*base > n, tested without forming the product.
	if k > 1 && base > n/(k-1) {
		return nil, errors.Wrapf(ErrInvalidArity,
			"cannot split extent %d into %d outputs of size %d", n, k, base)
	}
	last := n - (k-1)*base

	sizes := make([]int, k)
	for i := 0; i < k-1; i++ {
		sizes[i] = base
	}
	sizes[k-1] = last
	return sizes, nil
}

// ResolveSplitSizes validates the Split parameters against shape and returns
// the normalized axis together with the segment length of every output.
//
// Explicit sizes take precedence: they must be non-negative and sum to
// shape[axis], and if numOutputs is positive it must equal len(sizes).
// Without sizes the equal-parts policy divides shape[axis] into numOutputs
// segments (see EqualParts).
func ResolveSplitSizes(shape Shape, axis int, sizes []int, numOutputs int) (int, []int, error) {
	axis, err := NormalizeAxis(axis, len(shape))
	if err != nil {
		return 0, nil, err
	}
	extent := shape[axis]

	if len(sizes) == 0 {
		segments, err := EqualParts(extent, numOutputs)
		if err != nil {
			return 0, nil, err
		}
		return axis, segments, nil
	}

	if numOutputs > 0 && numOutputs != len(sizes) {
		return 0, nil, errors.Wrapf(ErrInvalidArity,
			"%d split sizes given for %d outputs", len(sizes), numOutputs)
	}
	// Partial sums stay within extent, so the running total cannot overflow.
	total := 0
	for i, s := range sizes {
		if s < 0 {
			return 0, nil, errors.Wrapf(ErrInvalidSplitSizes, "size %d at index %d is negative", s, i)
		}
		if s > extent-total {
			return 0, nil, errors.Wrapf(ErrInvalidSplitSizes,
				"sizes %v exceed axis %d of size %d at index %d", sizes, axis, extent, i)
		}
		total += s
	}
	if total != extent {
		return 0, nil, errors.Wrapf(ErrInvalidSplitSizes,
			"sizes %v sum to %d, but axis %d has size %d", sizes, total, axis, extent)
	}
	return axis, append([]int(nil), sizes...), nil
}

// Split partitions x along axis into consecutive sub-tensors.
//
// If sizes is non-empty, output i has extent sizes[i] along axis. Otherwise
// the equal-parts policy splits the axis into numOutputs outputs. Negative
// axis values count from the last dimension.
//
// All parameters are validated before any data is copied; on error no output
// is returned. Errors wrap ErrInvalidAxis, ErrInvalidSplitSizes or
// ErrInvalidArity.
//
// Example:
//
//	x, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{6})
//	parts, _ := Split(x, 0, []int{2, 4}, 0) // [1 2] [3 4 5 6]
func Split(x *RawTensor, axis int, sizes []int, numOutputs int) ([]*RawTensor, error) {
	return SplitWith(x, axis, sizes, numOutputs, parallel.Sequential())
}

// SplitWith is Split with an explicit parallel configuration for the copy
// loop. Outer rows of the input are independent, so each output is filled by
// blocks of rows.
func SplitWith(x *RawTensor, axis int, sizes []int, numOutputs int, cfg parallel.Config) ([]*RawTensor, error) {
	if x == nil {
		return nil, errors.New("Split: input tensor is nil")
	}

	axis, segments, err := ResolveSplitSizes(x.shape, axis, sizes, numOutputs)
	if err != nil {
		return nil, errors.WithMessage(err, "Split")
	}

	results := make([]*RawTensor, len(segments))
	offset := 0
	for i, size := range segments {
		outShape := x.shape.Clone()
		outShape[axis] = size

		out, err := NewRaw(outShape, x.dtype)
		if err != nil {
			return nil, errors.WithMessage(err, "Split")
		}
		copyAxisSlice(x, out, axis, offset, size, cfg)

		results[i] = out
		offset += size
	}

	return results, nil
}

// copyAxisSlice copies src[..., offset:offset+size, ...] (the range taken
// along axis) into dst, which must already have the sliced shape.
//
// With outer the product of the dimensions before axis and inner the product
// after it, the slice is outer runs of size*inner contiguous elements, each
// starting at (o*extent + offset)*inner in src. Copies work on bytes so every
// dtype shares one routine.
func copyAxisSlice(src, dst *RawTensor, axis, offset, size int, cfg parallel.Config) {
	outer, inner := src.shape.outerInner(axis)
	elem := src.dtype.Size()
	extent := src.shape[axis]
	run := size * inner * elem
	if run == 0 {
		return
	}

	parallel.ForRange(outer, func(start, end int) {
		for o := start; o < end; o++ {
			srcStart := (o*extent + offset) * inner * elem
			dstStart := o * run
			copy(dst.data[dstStart:dstStart+run], src.data[srcStart:srcStart+run])
		}
	}, cfg)
}
