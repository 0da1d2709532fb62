// Package onnx reads and writes the subset of the ONNX protobuf format used by
// operator conformance fixtures, and runs single-operator graphs.
//
// Key components:
//   - ModelProto, GraphProto, NodeProto, TensorProto: hand-written message
//     structs with onnx.proto field numbers
//   - Parse, ParseTensor: decoders built on protowire; repeated scalars are
//     accepted packed and unpacked
//   - MarshalModel, MarshalTensor: encoders producing the proto2 layout
//   - Model: executes a graph node by node through the operator registry
//
// Supported element types: float32, float64, float16, int32, int64, uint8, bool.
//
// Example usage:
//
//	model, err := onnx.Load("test_split_equal_parts_1d/model.onnx")
//	if err != nil {
//	    return err
//	}
//	for _, node := range model.Proto().Graph.Nodes {
//	    fmt.Printf("Op: %s (opset %d)\n", node.OpType, model.OpsetVersion())
//	}
package onnx
