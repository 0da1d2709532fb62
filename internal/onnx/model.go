package onnx

import (
	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

// Model represents a loaded ONNX model ready to run.
type Model struct {
	proto        *ModelProto
	registry     *operators.Registry
	ctx          *operators.Context
	tensors      map[string]*tensor.RawTensor // Initializers
	inputNames   []string
	outputNames  []string
	sortedNodes  []NodeProto
	opsetVersion int64
}

// InputNames returns the names of model inputs.
func (m *Model) InputNames() []string {
	return m.inputNames
}

// OutputNames returns the names of model outputs.
func (m *Model) OutputNames() []string {
	return m.outputNames
}

// OpsetVersion returns the ONNX opset version.
func (m *Model) OpsetVersion() int64 {
	return m.opsetVersion
}

// Proto returns the parsed model.
func (m *Model) Proto() *ModelProto {
	return m.proto
}

// Run executes the graph with named inputs.
// Returns a map of output name to tensor.
func (m *Model) Run(inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error) {
	tensors := make(map[string]*tensor.RawTensor, len(m.tensors)+len(inputs))
	for name, t := range m.tensors {
		tensors[name] = t
	}
	for name, t := range inputs {
		tensors[name] = t
	}

	for _, inputName := range m.inputNames {
		if _, ok := tensors[inputName]; !ok {
			return nil, errors.Errorf("missing input: %s", inputName)
		}
	}

	for nodeIdx := range m.sortedNodes {
		node := &m.sortedNodes[nodeIdx]
		nodeInputs := make([]*tensor.RawTensor, len(node.Inputs))
		for i, inputName := range node.Inputs {
			if inputName == "" {
				// Optional input not provided
				continue
			}
			t, ok := tensors[inputName]
			if !ok {
				return nil, errors.Errorf("node %s: missing input %s", node.Name, inputName)
			}
			nodeInputs[i] = t
		}

		outputs, err := m.registry.Execute(m.ctx, NodeToOperator(node), nodeInputs)
		if err != nil {
			return nil, errors.WithMessagef(err, "node %s (%s)", node.Name, node.OpType)
		}
		if len(outputs) != len(node.Outputs) {
			return nil, errors.Errorf("node %s (%s): produced %d outputs, declared %d",
				node.Name, node.OpType, len(outputs), len(node.Outputs))
		}

		for i, outputName := range node.Outputs {
			if outputName != "" {
				tensors[outputName] = outputs[i]
			}
		}
	}

	result := make(map[string]*tensor.RawTensor, len(m.outputNames))
	for _, outputName := range m.outputNames {
		t, ok := tensors[outputName]
		if !ok {
			return nil, errors.Errorf("missing output: %s", outputName)
		}
		result[outputName] = t
	}

	return result, nil
}

// compile prepares the model for execution.
func (m *Model) compile() error {
	graph := m.proto.Graph
	if graph == nil {
		return errors.New("model has no graph")
	}

	m.tensors = make(map[string]*tensor.RawTensor)
	for i := range graph.Initializers {
		init := &graph.Initializers[i]
		t, err := init.ToRaw()
		if err != nil {
			return errors.WithMessagef(err, "failed to load initializer %s", init.Name)
		}
		m.tensors[init.Name] = t
	}

	// Inputs are graph inputs minus initializers
	for i := range graph.Inputs {
		if _, ok := m.tensors[graph.Inputs[i].Name]; !ok {
			m.inputNames = append(m.inputNames, graph.Inputs[i].Name)
		}
	}

	for i := range graph.Outputs {
		m.outputNames = append(m.outputNames, graph.Outputs[i].Name)
	}

	m.sortedNodes = topologicalSort(graph.Nodes)
	m.opsetVersion = m.proto.DefaultOpset()
	m.ctx.Opset = m.opsetVersion

	return nil
}

// NodeToOperator converts NodeProto to operators.Node.
func NodeToOperator(proto *NodeProto) *operators.Node {
	attrs := make([]operators.Attribute, len(proto.Attributes))
	for i := range proto.Attributes {
		attr := &proto.Attributes[i]
		attrs[i] = operators.Attribute{
			Name:   attr.Name,
			Type:   attr.Type,
			F:      attr.F,
			I:      attr.I,
			S:      attr.S,
			Floats: attr.Floats,
			Ints:   attr.Ints,
		}
	}
	return &operators.Node{
		Name:       proto.Name,
		OpType:     proto.OpType,
		Inputs:     proto.Inputs,
		Outputs:    proto.Outputs,
		Attributes: attrs,
		Domain:     proto.Domain,
	}
}

// NodeFromOperator converts operators.Node to NodeProto.
func NodeFromOperator(node *operators.Node) NodeProto {
	attrs := make([]AttributeProto, len(node.Attributes))
	for i, a := range node.Attributes {
		attrs[i] = AttributeProto{
			Name:   a.Name,
			Type:   a.Type,
			F:      a.F,
			I:      a.I,
			S:      a.S,
			Floats: a.Floats,
			Ints:   a.Ints,
		}
	}
	return NodeProto{
		Name:       node.Name,
		OpType:     node.OpType,
		Inputs:     append([]string(nil), node.Inputs...),
		Outputs:    append([]string(nil), node.Outputs...),
		Attributes: attrs,
		Domain:     node.Domain,
	}
}

// topologicalSort sorts nodes in execution order.
// Ensures dependencies are executed before dependents.
func topologicalSort(nodes []NodeProto) []NodeProto {
	outputToNode := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			outputToNode[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true

		// Visit dependencies first
		for _, input := range nodes[i].Inputs {
			if depIdx, ok := outputToNode[input]; ok {
				visit(depIdx)
			}
		}

		result = append(result, nodes[i])
	}

	for i := range nodes {
		visit(i)
	}

	return result
}
