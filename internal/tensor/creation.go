package tensor

import (
	"github.com/pkg/errors"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	copy(view[T](raw), data)
	return raw, nil
}

// Vector creates a rank-1 tensor holding data.
func Vector[T DType](data []T) (*RawTensor, error) {
	return FromSlice(data, Shape{len(data)})
}

// Values returns a copy of the tensor elements as []T.
// Fails if T does not match the tensor's dtype.
func Values[T DType](r *RawTensor) ([]T, error) {
	var dummy T
	if dt := inferDataType(dummy); dt != r.dtype {
		return nil, errors.Errorf("tensor dtype is %s, not %s", r.dtype, dt)
	}
	return append([]T{}, view[T](r)...), nil
}
