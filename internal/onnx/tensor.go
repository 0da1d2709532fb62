package onnx

import (
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/conformance/internal/tensor"
)

// DataTypeFromProto converts an ONNX element type to tensor.DataType.
func DataTypeFromProto(onnxType int32) (tensor.DataType, error) {
	switch onnxType {
	case TensorProtoFloat:
		return tensor.Float32, nil
	case TensorProtoDouble:
		return tensor.Float64, nil
	case TensorProtoInt32:
		return tensor.Int32, nil
	case TensorProtoInt64:
		return tensor.Int64, nil
	case TensorProtoUint8:
		return tensor.Uint8, nil
	case TensorProtoBool:
		return tensor.Bool, nil
	case TensorProtoFloat16:
		return tensor.Float16, nil
	default:
		return 0, errors.Errorf("unsupported ONNX data type %d", onnxType)
	}
}

// DataTypeToProto converts a tensor.DataType to the ONNX element type.
func DataTypeToProto(dtype tensor.DataType) int32 {
	switch dtype {
	case tensor.Float32:
		return TensorProtoFloat
	case tensor.Float64:
		return TensorProtoDouble
	case tensor.Int32:
		return TensorProtoInt32
	case tensor.Int64:
		return TensorProtoInt64
	case tensor.Uint8:
		return TensorProtoUint8
	case tensor.Bool:
		return TensorProtoBool
	case tensor.Float16:
		return TensorProtoFloat16
	default:
		return TensorProtoUndefined
	}
}

// TensorFromRaw converts a RawTensor into a named TensorProto carrying its
// elements in raw_data, the layout numpy_helper.from_array produces.
// The host is assumed little-endian, as in the rest of the framework.
func TensorFromRaw(name string, t *tensor.RawTensor) *TensorProto {
	dims := make([]int64, t.Rank())
	for i, d := range t.Shape() {
		dims[i] = int64(d)
	}
	return &TensorProto{
		Name:     name,
		DataType: DataTypeToProto(t.DType()),
		Dims:     dims,
		RawData:  append([]byte{}, t.Data()...),
	}
}

// ToRaw converts the TensorProto to a RawTensor. raw_data wins when present;
// otherwise the legacy typed fields are read for the element type.
//
//nolint:cyclop // one branch per legacy storage field
func (p *TensorProto) ToRaw() (*tensor.RawTensor, error) {
	shape := make(tensor.Shape, len(p.Dims))
	for i, dim := range p.Dims {
		if dim > math.MaxInt || dim < 0 {
			return nil, errors.Errorf("tensor %q: invalid dimension %d at index %d", p.Name, dim, i)
		}
		shape[i] = int(dim)
	}

	dtype, err := DataTypeFromProto(p.DataType)
	if err != nil {
		return nil, errors.WithMessagef(err, "tensor %q", p.Name)
	}

	if p.RawData != nil {
		t, err := tensor.FromBytes(shape, dtype, p.RawData)
		if err != nil {
			return nil, errors.WithMessagef(err, "tensor %q", p.Name)
		}
		return t, nil
	}

	t, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, errors.WithMessagef(err, "tensor %q", p.Name)
	}
	n := t.NumElements()

	var have int
	switch dtype {
	case tensor.Float32:
		have = len(p.FloatData)
	case tensor.Float64:
		have = len(p.DoubleData)
	case tensor.Int64:
		have = len(p.Int64Data)
	case tensor.Int32, tensor.Uint8, tensor.Bool, tensor.Float16:
		have = len(p.Int32Data)
	}
	if have != n {
		return nil, errors.Errorf("tensor %q: shape %v needs %d elements, found %d", p.Name, shape, n, have)
	}

	switch dtype {
	case tensor.Float32:
		copy(t.AsFloat32(), p.FloatData)
	case tensor.Float64:
		copy(t.AsFloat64(), p.DoubleData)
	case tensor.Int64:
		copy(t.AsInt64(), p.Int64Data)
	case tensor.Int32:
		copy(t.AsInt32(), p.Int32Data)
	case tensor.Uint8:
		dst := t.AsUint8()
		for i, v := range p.Int32Data {
			dst[i] = uint8(v) //nolint:gosec // G115: uint8 values stored widened.
		}
	case tensor.Bool:
		dst := t.AsBool()
		for i, v := range p.Int32Data {
			dst[i] = v != 0
		}
	case tensor.Float16:
		dst := t.AsFloat16()
		for i, v := range p.Int32Data {
			dst[i] = float16.Frombits(uint16(v)) //nolint:gosec // G115: half bits stored widened.
		}
	}
	return t, nil
}

// ValueInfoFromRaw describes t as a graph input or output named name.
func ValueInfoFromRaw(name string, t *tensor.RawTensor) ValueInfoProto {
	dims := make([]DimensionProto, t.Rank())
	for i, d := range t.Shape() {
		dims[i] = DimensionProto{DimValue: int64(d)}
	}
	return ValueInfoProto{
		Name: name,
		Type: &TypeProto{TensorType: &TensorTypeProto{
			ElemType: DataTypeToProto(t.DType()),
			Shape:    &TensorShapeProto{Dims: dims},
		}},
	}
}
