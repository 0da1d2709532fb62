package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

// IRVersion is the ONNX IR version written into generated models.
const IRVersion = 8

// Producer identifies models written by this module.
const Producer = "born-conformance"

// BuildNodeModel wraps a single node into a model whose graph inputs are the
// node's non-empty inputs and whose graph outputs are its outputs, typed after
// the given tensors. This mirrors how the ONNX backend tests turn a node and
// its example data into model.onnx.
func BuildNodeModel(name string, node *operators.Node, inputs, outputs []*tensor.RawTensor, opset int64) (*ModelProto, error) {
	graph := &GraphProto{
		Name:  name,
		Nodes: []NodeProto{NodeFromOperator(node)},
	}

	present := 0
	for _, in := range node.Inputs {
		if in == "" {
			continue
		}
		if present >= len(inputs) {
			return nil, errors.Errorf("%s: node input %q has no example tensor", name, in)
		}
		graph.Inputs = append(graph.Inputs, ValueInfoFromRaw(in, inputs[present]))
		present++
	}
	if present != len(inputs) {
		return nil, errors.Errorf("%s: %d example inputs for %d node inputs", name, len(inputs), present)
	}

	if len(outputs) != len(node.Outputs) {
		return nil, errors.Errorf("%s: %d expected outputs for %d node outputs", name, len(outputs), len(node.Outputs))
	}
	for i, out := range node.Outputs {
		graph.Outputs = append(graph.Outputs, ValueInfoFromRaw(out, outputs[i]))
	}

	return &ModelProto{
		IRVersion:    IRVersion,
		ProducerName: Producer,
		OpsetImport:  []OperatorSetID{{Domain: "", Version: opset}},
		Graph:        graph,
	}, nil
}
