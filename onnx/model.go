package onnx

import "github.com/born-ml/conformance/tensor"

// Model represents a loaded ONNX graph ready to run.
//
// Model is an interface to hide implementation details and allow
// for future optimizations without breaking the API.
type Model interface {
	// Run executes the graph with named inputs.
	// Returns a map of output name to tensor.
	//
	// All input names from InputNames() must be provided.
	//
	// Example:
	//
	//	outputs, err := model.Run(map[string]*tensor.RawTensor{
	//	    "input": x,
	//	    "split": sizes,
	//	})
	//	if err != nil {
	//	    log.Fatal(err)
	//	}
	//	first := outputs["output_1"]
	Run(inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error)

	// InputNames returns the names of model inputs.
	InputNames() []string

	// OutputNames returns the names of model outputs.
	OutputNames() []string

	// OpsetVersion returns the ONNX opset version used by the model.
	OpsetVersion() int64
}
