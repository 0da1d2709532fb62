package conformance

import (
	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

// Case is one single-node conformance fixture: a node, the tensors bound to
// its non-empty inputs, and the outputs a correct implementation must produce.
type Case struct {
	Name    string
	Node    *operators.Node
	Inputs  []*tensor.RawTensor
	Outputs []*tensor.RawTensor

	// MinOpset is the lowest opset the node can be expressed in, 0 for any.
	MinOpset int64
}

// Expect builds a Case, checking that the tensor counts line up with the
// node's declared inputs and outputs.
func Expect(node *operators.Node, inputs, outputs []*tensor.RawTensor, name string) (Case, error) {
	present := 0
	for _, in := range node.Inputs {
		if in != "" {
			present++
		}
	}
	if present != len(inputs) {
		return Case{}, errors.Errorf("%s: node has %d inputs, got %d tensors", name, present, len(inputs))
	}
	if len(node.Outputs) != len(outputs) {
		return Case{}, errors.Errorf("%s: node has %d outputs, got %d tensors", name, len(node.Outputs), len(outputs))
	}
	return Case{Name: name, Node: node, Inputs: inputs, Outputs: outputs}, nil
}

// nodeInputs spreads the case inputs over the node's input slots, leaving nil
// where an optional input is omitted.
func (c *Case) nodeInputs() []*tensor.RawTensor {
	inputs := make([]*tensor.RawTensor, len(c.Node.Inputs))
	next := 0
	for i, name := range c.Node.Inputs {
		if name == "" {
			continue
		}
		inputs[i] = c.Inputs[next]
		next++
	}
	return inputs
}

// Check runs the case node through reg and requires every output to match the
// expected tensor exactly: same dtype, same shape, same elements.
func Check(reg *operators.Registry, ctx *operators.Context, c *Case) error {
	got, err := reg.Execute(ctx, c.Node, c.nodeInputs())
	if err != nil {
		return errors.WithMessage(err, c.Name)
	}
	if len(got) != len(c.Outputs) {
		return errors.Errorf("%s: got %d outputs, want %d", c.Name, len(got), len(c.Outputs))
	}
	for i, want := range c.Outputs {
		if !tensor.Equal(got[i], want) {
			return errors.Errorf("%s: output %d (%s) = %v, want %v", c.Name, i, c.Node.Outputs[i], got[i], want)
		}
	}
	return nil
}
