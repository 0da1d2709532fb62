package onnx

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by the caller, reading it is the point.
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := readModelProto(data, model); err != nil {
		return nil, errors.WithMessage(err, "failed to parse model")
	}
	return model, nil
}

// ParseTensorFile parses a serialized TensorProto, the format of the
// input_N.pb and output_N.pb files of a test data set.
//
//nolint:gosec // G304: Path is provided by the caller, reading it is the point.
func ParseTensorFile(path string) (*TensorProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return ParseTensor(data)
}

// ParseTensor parses a serialized TensorProto.
func ParseTensor(data []byte) (*TensorProto, error) {
	t := &TensorProto{}
	if err := readTensorProto(data, t); err != nil {
		return nil, errors.WithMessage(err, "failed to parse tensor")
	}
	return t, nil
}

// fieldFunc decodes one field whose tag has already been consumed from b.
// It returns the number of bytes of b it consumed; returning 0 asks walk to
// skip the field. Negative values are protowire error codes.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) int

// walk iterates over the fields of a message.
func walk(b []byte, f fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m := f(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return errors.Wrapf(protowire.ParseError(m), "field %d", num)
		}
		b = b[m:]
	}
	return nil
}

// errNested carries a decoding error out of a nested message.
const errNested = -100

// message decodes an embedded message with read and stores the first error
// in *errp.
func message(b []byte, errp *error, read func([]byte) error) int {
	data, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	if err := read(data); err != nil {
		*errp = err
		return errNested
	}
	return n
}

// walkNested is walk for messages containing sub-messages: nested errors
// reported through message are returned instead of the protowire code.
func walkNested(b []byte, f func(num protowire.Number, typ protowire.Type, b []byte, errp *error) int) error {
	var nested error
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		return f(num, typ, b, &nested)
	})
	if nested != nil {
		return nested
	}
	return err
}

func consumeString(b []byte, dst *string) int {
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = string(v)
	}
	return n
}

func consumeInt64(b []byte, dst *int64) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int64(v) //nolint:gosec // G115: two's complement int64 on the wire.
	}
	return n
}

func consumeInt32(b []byte, dst *int32) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int32(v) //nolint:gosec // G115: ONNX enums and int32 fields fit.
	}
	return n
}

// consumeInt64s decodes a repeated int64 field in either packed or unpacked
// form. onnx.proto is proto2, so writers differ.
func consumeInt64s(typ protowire.Type, b []byte, dst *[]int64) int {
	if typ != protowire.BytesType {
		var v int64
		n := consumeInt64(b, &v)
		if n >= 0 {
			*dst = append(*dst, v)
		}
		return n
	}
	data, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	for len(data) > 0 {
		v, m := protowire.ConsumeVarint(data)
		if m < 0 {
			return m
		}
		*dst = append(*dst, int64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
		data = data[m:]
	}
	return n
}

// consumeInt32s is consumeInt64s for int32 values.
func consumeInt32s(typ protowire.Type, b []byte, dst *[]int32) int {
	var wide []int64
	n := consumeInt64s(typ, b, &wide)
	for _, v := range wide {
		*dst = append(*dst, int32(v)) //nolint:gosec // G115: int32 field.
	}
	return n
}

// consumeFloats decodes a repeated float field in packed or unpacked form.
func consumeFloats(typ protowire.Type, b []byte, dst *[]float32) int {
	if typ == protowire.Fixed32Type {
		v, n := protowire.ConsumeFixed32(b)
		if n >= 0 {
			*dst = append(*dst, math.Float32frombits(v))
		}
		return n
	}
	data, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	for len(data) > 0 {
		v, m := protowire.ConsumeFixed32(data)
		if m < 0 {
			return m
		}
		*dst = append(*dst, math.Float32frombits(v))
		data = data[m:]
	}
	return n
}

// consumeDoubles decodes a repeated double field in packed or unpacked form.
func consumeDoubles(typ protowire.Type, b []byte, dst *[]float64) int {
	if typ == protowire.Fixed64Type {
		v, n := protowire.ConsumeFixed64(b)
		if n >= 0 {
			*dst = append(*dst, math.Float64frombits(v))
		}
		return n
	}
	data, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	for len(data) > 0 {
		v, m := protowire.ConsumeFixed64(data)
		if m < 0 {
			return m
		}
		*dst = append(*dst, math.Float64frombits(v))
		data = data[m:]
	}
	return n
}

func readModelProto(b []byte, m *ModelProto) error {
	return walkNested(b, func(num protowire.Number, typ protowire.Type, b []byte, errp *error) int {
		switch num {
		case modelIRVersion:
			return consumeInt64(b, &m.IRVersion)
		case modelProducerName:
			return consumeString(b, &m.ProducerName)
		case modelProducerVersion:
			return consumeString(b, &m.ProducerVersion)
		case modelDomain:
			return consumeString(b, &m.Domain)
		case modelModelVersion:
			return consumeInt64(b, &m.ModelVersion)
		case modelDocString:
			return consumeString(b, &m.DocString)
		case modelGraph:
			m.Graph = &GraphProto{}
			return message(b, errp, func(data []byte) error { return readGraphProto(data, m.Graph) })
		case modelOpsetImport:
			var opset OperatorSetID
			n := message(b, errp, func(data []byte) error { return readOperatorSetID(data, &opset) })
			m.OpsetImport = append(m.OpsetImport, opset)
			return n
		case modelMetadataProps:
			var entry StringStringEntry
			n := message(b, errp, func(data []byte) error { return readStringStringEntry(data, &entry) })
			m.MetadataProps = append(m.MetadataProps, entry)
			return n
		}
		return 0
	})
}

func readGraphProto(b []byte, g *GraphProto) error {
	return walkNested(b, func(num protowire.Number, typ protowire.Type, b []byte, errp *error) int {
		switch num {
		case graphNode:
			var node NodeProto
			n := message(b, errp, func(data []byte) error { return readNodeProto(data, &node) })
			g.Nodes = append(g.Nodes, node)
			return n
		case graphName:
			return consumeString(b, &g.Name)
		case graphInitializer:
			var t TensorProto
			n := message(b, errp, func(data []byte) error { return readTensorProto(data, &t) })
			g.Initializers = append(g.Initializers, t)
			return n
		case graphDocString:
			return consumeString(b, &g.DocString)
		case graphInput, graphOutput, graphValueInfo:
			var vi ValueInfoProto
			n := message(b, errp, func(data []byte) error { return readValueInfoProto(data, &vi) })
			switch num {
			case graphInput:
				g.Inputs = append(g.Inputs, vi)
			case graphOutput:
				g.Outputs = append(g.Outputs, vi)
			default:
				g.ValueInfo = append(g.ValueInfo, vi)
			}
			return n
		}
		return 0
	})
}

func readNodeProto(b []byte, node *NodeProto) error {
	return walkNested(b, func(num protowire.Number, typ protowire.Type, b []byte, errp *error) int {
		switch num {
		case nodeInput, nodeOutput:
			var s string
			n := consumeString(b, &s)
			if num == nodeInput {
				node.Inputs = append(node.Inputs, s)
			} else {
				node.Outputs = append(node.Outputs, s)
			}
			return n
		case nodeName:
			return consumeString(b, &node.Name)
		case nodeOpType:
			return consumeString(b, &node.OpType)
		case nodeAttribute:
			var attr AttributeProto
			n := message(b, errp, func(data []byte) error { return readAttributeProto(data, &attr) })
			node.Attributes = append(node.Attributes, attr)
			return n
		case nodeDocString:
			return consumeString(b, &node.DocString)
		case nodeDomain:
			return consumeString(b, &node.Domain)
		}
		return 0
	})
}

func readAttributeProto(b []byte, a *AttributeProto) error {
	return walkNested(b, func(num protowire.Number, typ protowire.Type, b []byte, errp *error) int {
		switch num {
		case attrName:
			return consumeString(b, &a.Name)
		case attrF:
			v, n := protowire.ConsumeFixed32(b)
			if n >= 0 {
				a.F = math.Float32frombits(v)
			}
			return n
		case attrI:
			return consumeInt64(b, &a.I)
		case attrS:
			v, n := protowire.ConsumeBytes(b)
			if n >= 0 {
				a.S = append([]byte(nil), v...)
			}
			return n
		case attrT:
			a.T = &TensorProto{}
			return message(b, errp, func(data []byte) error { return readTensorProto(data, a.T) })
		case attrFloats:
			return consumeFloats(typ, b, &a.Floats)
		case attrInts:
			return consumeInt64s(typ, b, &a.Ints)
		case attrStrings:
			v, n := protowire.ConsumeBytes(b)
			if n >= 0 {
				a.Strings = append(a.Strings, append([]byte(nil), v...))
			}
			return n
		case attrDocString:
			return consumeString(b, &a.DocString)
		case attrType:
			return consumeInt32(b, &a.Type)
		}
		return 0
	})
}

func readTensorProto(b []byte, t *TensorProto) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case tensorDims:
			return consumeInt64s(typ, b, &t.Dims)
		case tensorDataType:
			return consumeInt32(b, &t.DataType)
		case tensorFloatData:
			return consumeFloats(typ, b, &t.FloatData)
		case tensorInt32Data:
			return consumeInt32s(typ, b, &t.Int32Data)
		case tensorInt64Data:
			return consumeInt64s(typ, b, &t.Int64Data)
		case tensorName:
			return consumeString(b, &t.Name)
		case tensorRawData:
			v, n := protowire.ConsumeBytes(b)
			if n >= 0 {
				t.RawData = append([]byte{}, v...)
			}
			return n
		case tensorDoubleData:
			return consumeDoubles(typ, b, &t.DoubleData)
		case tensorDocString:
			return consumeString(b, &t.DocString)
		}
		return 0
	})
}

func readValueInfoProto(b []byte, vi *ValueInfoProto) error {
	return walkNested(b, func(num protowire.Number, _ protowire.Type, b []byte, errp *error) int {
		switch num {
		case valueInfoName:
			return consumeString(b, &vi.Name)
		case valueInfoType:
			vi.Type = &TypeProto{}
			return message(b, errp, func(data []byte) error { return readTypeProto(data, vi.Type) })
		case valueInfoDocString:
			return consumeString(b, &vi.DocString)
		}
		return 0
	})
}

func readTypeProto(b []byte, tp *TypeProto) error {
	return walkNested(b, func(num protowire.Number, _ protowire.Type, b []byte, errp *error) int {
		if num == typeTensorType {
			tp.TensorType = &TensorTypeProto{}
			return message(b, errp, func(data []byte) error { return readTensorTypeProto(data, tp.TensorType) })
		}
		return 0
	})
}

func readTensorTypeProto(b []byte, tt *TensorTypeProto) error {
	return walkNested(b, func(num protowire.Number, _ protowire.Type, b []byte, errp *error) int {
		switch num {
		case tensorTypeElemType:
			return consumeInt32(b, &tt.ElemType)
		case tensorTypeShape:
			tt.Shape = &TensorShapeProto{}
			return message(b, errp, func(data []byte) error { return readTensorShapeProto(data, tt.Shape) })
		}
		return 0
	})
}

func readTensorShapeProto(b []byte, s *TensorShapeProto) error {
	return walkNested(b, func(num protowire.Number, _ protowire.Type, b []byte, errp *error) int {
		if num == shapeDim {
			var dim DimensionProto
			n := message(b, errp, func(data []byte) error { return readDimensionProto(data, &dim) })
			s.Dims = append(s.Dims, dim)
			return n
		}
		return 0
	})
}

func readDimensionProto(b []byte, d *DimensionProto) error {
	return walk(b, func(num protowire.Number, _ protowire.Type, b []byte) int {
		switch num {
		case dimValue:
			return consumeInt64(b, &d.DimValue)
		case dimParam:
			return consumeString(b, &d.DimParam)
		}
		return 0
	})
}

func readOperatorSetID(b []byte, o *OperatorSetID) error {
	return walk(b, func(num protowire.Number, _ protowire.Type, b []byte) int {
		switch num {
		case opsetDomain:
			return consumeString(b, &o.Domain)
		case opsetVersion:
			return consumeInt64(b, &o.Version)
		}
		return 0
	})
}

func readStringStringEntry(b []byte, e *StringStringEntry) error {
	return walk(b, func(num protowire.Number, _ protowire.Type, b []byte) int {
		switch num {
		case entryKey:
			return consumeString(b, &e.Key)
		case entryValue:
			return consumeString(b, &e.Value)
		}
		return 0
	})
}
