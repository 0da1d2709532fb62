package tensor

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// RawTensor is the low-level tensor representation: a contiguous row-major
// byte buffer plus shape and element type.
//
// A RawTensor is treated as immutable once built. The typed views returned by
// the As* methods alias the buffer; callers that own a freshly created tensor
// may fill it through them, everybody else must only read.
type RawTensor struct {
	data   []byte   // Element storage, native byte order
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major), in elements
	dtype  DataType // Runtime type information
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if shape.NumElements() > math.MaxInt/dtype.Size() {
		return nil, errors.Errorf("invalid shape: %v of %s overflows the addressable byte size", shape, dtype)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromBytes creates a RawTensor that takes a copy of data, which must hold
// exactly shape.NumElements() elements of dtype in native byte order.
func FromBytes(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(r.data) {
		return nil, errors.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, len(r.data), len(data))
	}
	copy(r.data, data)
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Rank returns the number of dimensions.
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Do not modify shared tensors.
func (r *RawTensor) Data() []byte {
	return r.data
}

// view reinterprets the buffer as a []T of NumElements() items.
func view[T any](r *RawTensor) []T {
	n := r.NumElements()
	if n == 0 {
		return []T{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), n)
}

func (r *RawTensor) mustBe(dtype DataType) {
	if r.dtype != dtype {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dtype))
	}
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	return view[float32](r)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	return view[float64](r)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	return view[int32](r)
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	return view[int64](r)
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.data
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	r.mustBe(Bool)
	return view[bool](r)
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	r.mustBe(Float16)
	return view[float16.Float16](r)
}

// Float64At returns the element at flat index i converted to float64.
// Booleans map to 0 and 1.
func (r *RawTensor) Float64At(i int) float64 {
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	case Int32:
		return float64(r.AsInt32()[i])
	case Int64:
		return float64(r.AsInt64()[i])
	case Uint8:
		return float64(r.data[i])
	case Bool:
		if r.AsBool()[i] {
			return 1
		}
		return 0
	case Float16:
		return float64(r.AsFloat16()[i].Float32())
	default:
		panic(fmt.Sprintf("unsupported dtype %s", r.dtype))
	}
}

// Int64s returns the elements as int64 regardless of the integer dtype.
// Used to read index-like inputs such as split sizes.
func (r *RawTensor) Int64s() ([]int64, error) {
	switch r.dtype {
	case Int64:
		return append([]int64(nil), r.AsInt64()...), nil
	case Int32:
		in := r.AsInt32()
		out := make([]int64, len(in))
		for i, v := range in {
			out[i] = int64(v)
		}
		return out, nil
	default:
		return nil, errors.Errorf("expected an integer tensor, got %s", r.dtype)
	}
}

// String returns a human-readable representation of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v", r.dtype, r.shape)
}
