package tensor

import (
	"github.com/pkg/errors"
)

// Concat concatenates tensors along the specified axis.
// It is the inverse of Split: Concat(Split(x, axis, ...), axis) equals x.
//
//nolint:cyclop // Concat validation has inherent complexity
func Concat(tensors []*RawTensor, axis int) (*RawTensor, error) {
	if len(tensors) == 0 {
		return nil, errors.New("Concat: no tensors provided")
	}

	first := tensors[0]
	ndim := len(first.shape)

	axis, err := NormalizeAxis(axis, ndim)
	if err != nil {
		return nil, errors.WithMessage(err, "Concat")
	}

	// Verify all tensors have compatible shapes
	for i, t := range tensors[1:] {
		if len(t.shape) != ndim {
			return nil, errors.Errorf("Concat: tensor %d has %d dimensions, expected %d", i+1, len(t.shape), ndim)
		}
		if t.dtype != first.dtype {
			return nil, errors.Errorf("Concat: tensor %d has dtype %v, expected %v", i+1, t.dtype, first.dtype)
		}
		for j := 0; j < ndim; j++ {
			if j != axis && t.shape[j] != first.shape[j] {
				return nil, errors.Errorf("Concat: tensor %d has shape %v, incompatible with %v on axis %d", i+1, t.shape, first.shape, axis)
			}
		}
	}

	newShape := first.shape.Clone()
	for _, t := range tensors[1:] {
		newShape[axis] += t.shape[axis]
	}

	result, err := NewRaw(newShape, first.dtype)
	if err != nil {
		return nil, errors.WithMessage(err, "Concat")
	}

	outer, inner := newShape.outerInner(axis)
	elem := first.dtype.Size()
	offset := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			copyLen := t.shape[axis] * inner * elem
			inStart := o * copyLen
			copy(result.data[offset:offset+copyLen], t.data[inStart:inStart+copyLen])
			offset += copyLen
		}
	}

	return result, nil
}
