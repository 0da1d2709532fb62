// Package onnx loads and runs single-node ONNX models such as the Split
// conformance fixtures.
//
// # Supported Features
//
//   - ONNX format parsing and writing (protobuf wire format)
//   - Opset versions 1-18 for Split
//   - float32, float64, float16, int32, int64, uint8 and bool tensors
//   - Named input/output support
//
// # Example Usage
//
//	import (
//	    "github.com/born-ml/conformance/onnx"
//	    "github.com/born-ml/conformance/tensor"
//	)
//
//	model, err := onnx.Load("test_split_equal_parts_1d/model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})
//	outputs, err := model.Run(map[string]*tensor.RawTensor{"input": x})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Operators
//
//   - Shape: Split, Concat, Identity
//
// Use [ListSupportedOps] to get the complete list of supported operators.
package onnx

import (
	internalonnx "github.com/born-ml/conformance/internal/onnx"
	"github.com/born-ml/conformance/tensor"
)

// LoadOptions configures ONNX model loading behavior.
type LoadOptions = internalonnx.LoadOptions

// DefaultLoadOptions returns the default options for loading ONNX models.
//
// Default configuration:
//   - Strict mode: enabled (fails on unsupported operators)
//   - Parallel copy: disabled
func DefaultLoadOptions() LoadOptions {
	return internalonnx.DefaultLoadOptions()
}

// Load loads an ONNX model from a file path.
//
// Example:
//
//	model, err := onnx.Load("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Inputs:", model.InputNames())
//	fmt.Println("Opset:", model.OpsetVersion())
func Load(path string, opts ...LoadOptions) (Model, error) {
	m, err := internalonnx.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFromBytes loads an ONNX model from raw bytes.
func LoadFromBytes(data []byte, opts ...LoadOptions) (Model, error) {
	m, err := internalonnx.LoadFromBytes(data, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ModelInfo contains metadata about an ONNX model.
type ModelInfo = internalonnx.ModelInfo

// GetModelInfo reads an ONNX file and reports its opset, producer, inputs,
// outputs and operators without preparing it for execution.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := internalonnx.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return internalonnx.GetModelInfo(proto), nil
}

// ReadTensor reads a serialized TensorProto, such as a fixture's input_0.pb.
func ReadTensor(path string) (*tensor.RawTensor, error) {
	proto, err := internalonnx.ParseTensorFile(path)
	if err != nil {
		return nil, err
	}
	return proto.ToRaw()
}

// WriteTensor serializes t as a TensorProto named name.
func WriteTensor(path, name string, t *tensor.RawTensor) error {
	_, err := internalonnx.WriteTensorFile(path, internalonnx.TensorFromRaw(name, t))
	return err
}

// ListSupportedOps returns a list of all ONNX operators supported.
func ListSupportedOps() []string {
	return internalonnx.ListSupportedOps()
}
