package onnx

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// MarshalModel serializes a model to the ONNX protobuf wire format.
//
// Repeated scalar fields are written unpacked, the proto2 default of
// onnx.proto, except for the typed data arrays of TensorProto, which
// onnx.proto declares packed.
func MarshalModel(m *ModelProto) []byte {
	return appendModelProto(nil, m)
}

// MarshalTensor serializes a TensorProto.
func MarshalTensor(t *TensorProto) []byte {
	return appendTensorProto(nil, t)
}

// WriteModelFile serializes m into path.
func WriteModelFile(path string, m *ModelProto) (int, error) {
	return writeFile(path, MarshalModel(m))
}

// WriteTensorFile serializes t into path.
func WriteTensorFile(path string, t *TensorProto) (int, error) {
	return writeFile(path, MarshalTensor(t))
}

func writeFile(path string, data []byte) (int, error) {
	//nolint:gosec // G306: fixtures are meant to be world readable.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", path)
	}
	return len(data), nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendOptionalString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendString(b, num, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	return appendBytes(b, num, msg)
}

func appendModelProto(b []byte, m *ModelProto) []byte {
	b = appendInt64(b, modelIRVersion, m.IRVersion)
	b = appendOptionalString(b, modelProducerName, m.ProducerName)
	b = appendOptionalString(b, modelProducerVersion, m.ProducerVersion)
	b = appendOptionalString(b, modelDomain, m.Domain)
	if m.ModelVersion != 0 {
		b = appendInt64(b, modelModelVersion, m.ModelVersion)
	}
	b = appendOptionalString(b, modelDocString, m.DocString)
	if m.Graph != nil {
		b = appendMessage(b, modelGraph, appendGraphProto(nil, m.Graph))
	}
	for i := range m.OpsetImport {
		var sub []byte
		sub = appendString(sub, opsetDomain, m.OpsetImport[i].Domain)
		sub = appendInt64(sub, opsetVersion, m.OpsetImport[i].Version)
		b = appendMessage(b, modelOpsetImport, sub)
	}
	for _, e := range m.MetadataProps {
		var sub []byte
		sub = appendString(sub, entryKey, e.Key)
		sub = appendString(sub, entryValue, e.Value)
		b = appendMessage(b, modelMetadataProps, sub)
	}
	return b
}

func appendGraphProto(b []byte, g *GraphProto) []byte {
	for i := range g.Nodes {
		b = appendMessage(b, graphNode, appendNodeProto(nil, &g.Nodes[i]))
	}
	b = appendOptionalString(b, graphName, g.Name)
	for i := range g.Initializers {
		b = appendMessage(b, graphInitializer, appendTensorProto(nil, &g.Initializers[i]))
	}
	b = appendOptionalString(b, graphDocString, g.DocString)
	for i := range g.Inputs {
		b = appendMessage(b, graphInput, appendValueInfoProto(nil, &g.Inputs[i]))
	}
	for i := range g.Outputs {
		b = appendMessage(b, graphOutput, appendValueInfoProto(nil, &g.Outputs[i]))
	}
	for i := range g.ValueInfo {
		b = appendMessage(b, graphValueInfo, appendValueInfoProto(nil, &g.ValueInfo[i]))
	}
	return b
}

func appendNodeProto(b []byte, n *NodeProto) []byte {
	// Empty names mark omitted optional inputs and must be kept.
	for _, in := range n.Inputs {
		b = appendString(b, nodeInput, in)
	}
	for _, out := range n.Outputs {
		b = appendString(b, nodeOutput, out)
	}
	b = appendOptionalString(b, nodeName, n.Name)
	b = appendString(b, nodeOpType, n.OpType)
	for i := range n.Attributes {
		b = appendMessage(b, nodeAttribute, appendAttributeProto(nil, &n.Attributes[i]))
	}
	b = appendOptionalString(b, nodeDocString, n.DocString)
	b = appendOptionalString(b, nodeDomain, n.Domain)
	return b
}

func appendAttributeProto(b []byte, a *AttributeProto) []byte {
	b = appendString(b, attrName, a.Name)
	switch a.Type {
	case AttributeProtoFloat:
		b = protowire.AppendTag(b, attrF, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	case AttributeProtoInt:
		b = appendInt64(b, attrI, a.I)
	case AttributeProtoString:
		b = appendBytes(b, attrS, a.S)
	case AttributeProtoTensor:
		if a.T != nil {
			b = appendMessage(b, attrT, appendTensorProto(nil, a.T))
		}
	case AttributeProtoFloats:
		for _, f := range a.Floats {
			b = protowire.AppendTag(b, attrFloats, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, math.Float32bits(f))
		}
	case AttributeProtoInts:
		for _, v := range a.Ints {
			b = appendInt64(b, attrInts, v)
		}
	case AttributeProtoStrings:
		for _, s := range a.Strings {
			b = appendBytes(b, attrStrings, s)
		}
	}
	b = appendOptionalString(b, attrDocString, a.DocString)
	b = appendInt64(b, attrType, int64(a.Type))
	return b
}

func appendTensorProto(b []byte, t *TensorProto) []byte {
	for _, d := range t.Dims {
		b = appendInt64(b, tensorDims, d)
	}
	b = appendInt64(b, tensorDataType, int64(t.DataType))
	if len(t.FloatData) > 0 {
		var packed []byte
		for _, f := range t.FloatData {
			packed = protowire.AppendFixed32(packed, math.Float32bits(f))
		}
		b = appendBytes(b, tensorFloatData, packed)
	}
	if len(t.Int32Data) > 0 {
		var packed []byte
		for _, v := range t.Int32Data {
			packed = protowire.AppendVarint(packed, uint64(int64(v))) //nolint:gosec // G115: int32 sign-extends on the wire.
		}
		b = appendBytes(b, tensorInt32Data, packed)
	}
	if len(t.Int64Data) > 0 {
		var packed []byte
		for _, v := range t.Int64Data {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement int64 on the wire.
		}
		b = appendBytes(b, tensorInt64Data, packed)
	}
	b = appendOptionalString(b, tensorName, t.Name)
	if t.RawData != nil {
		b = appendBytes(b, tensorRawData, t.RawData)
	}
	if len(t.DoubleData) > 0 {
		var packed []byte
		for _, v := range t.DoubleData {
			packed = protowire.AppendFixed64(packed, math.Float64bits(v))
		}
		b = appendBytes(b, tensorDoubleData, packed)
	}
	b = appendOptionalString(b, tensorDocString, t.DocString)
	return b
}

func appendValueInfoProto(b []byte, vi *ValueInfoProto) []byte {
	b = appendString(b, valueInfoName, vi.Name)
	if vi.Type != nil && vi.Type.TensorType != nil {
		tt := vi.Type.TensorType
		var tensorType []byte
		tensorType = appendInt64(tensorType, tensorTypeElemType, int64(tt.ElemType))
		if tt.Shape != nil {
			var shape []byte
			for _, d := range tt.Shape.Dims {
				var dim []byte
				if d.DimParam != "" {
					dim = appendString(dim, dimParam, d.DimParam)
				} else {
					dim = appendInt64(dim, dimValue, d.DimValue)
				}
				shape = appendMessage(shape, shapeDim, dim)
			}
			tensorType = appendMessage(tensorType, tensorTypeShape, shape)
		}
		b = appendMessage(b, valueInfoType, appendMessage(nil, typeTensorType, tensorType))
	}
	b = appendOptionalString(b, valueInfoDocString, vi.DocString)
	return b
}
