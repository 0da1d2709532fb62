package operators

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/conformance/internal/tensor"
)

// registerShapeOps adds shape manipulation operators to the registry.
func (r *Registry) registerShapeOps() {
	r.Register("Split", handleSplit)
	r.Register("Concat", handleConcat)
	r.Register("Identity", handleIdentity)
}

// handleSplit implements Split across opset versions:
//   - opset < 13: explicit sizes come from the "split" attribute.
//   - opset >= 13: explicit sizes come from the optional second input.
//   - opset >= 18: "num_outputs" may request equal parts explicitly.
//
// Without explicit sizes and num_outputs, the declared output count drives the
// equal-parts policy.
func handleSplit(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) < 1 || inputs[0] == nil {
		return nil, errors.Errorf("split requires at least 1 input, got %d", len(inputs))
	}
	if len(node.Outputs) == 0 {
		return nil, errors.Wrap(tensor.ErrInvalidArity, "split: node declares no outputs")
	}

	axis := int(GetAttrInt(node, "axis", 0))

	sizes, err := splitSizes(ctx, node, inputs)
	if err != nil {
		return nil, errors.WithMessage(err, "split")
	}

	numOutputs := len(node.Outputs)
	if HasAttr(node, "num_outputs") {
		if len(sizes) > 0 {
			return nil, errors.Wrap(tensor.ErrInvalidArity, "split: 'split' and 'num_outputs' are mutually exclusive")
		}
		n := int(GetAttrInt(node, "num_outputs", 0))
		if n != numOutputs {
			return nil, errors.Wrapf(tensor.ErrInvalidArity,
				"split: num_outputs=%d but node declares %d outputs", n, numOutputs)
		}
	}

	results, err := tensor.SplitWith(inputs[0], axis, sizes, numOutputs, ctx.Parallel)
	if err != nil {
		return nil, errors.WithMessage(err, "split")
	}
	return results, nil
}

// splitSizes reads the explicit split sizes for the node's opset. A nil
// result means the sizes were omitted.
func splitSizes(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]int, error) {
	var raw []int64
	if ctx.opset() < 13 {
		raw = GetAttrInts(node, "split")
	} else if len(inputs) >= 2 && inputs[1] != nil {
		if inputs[1].Rank() != 1 {
			return nil, errors.Wrapf(tensor.ErrInvalidSplitSizes, "'split' must be 1-D, got shape %v", inputs[1].Shape())
		}
		var err error
		raw, err = inputs[1].Int64s()
		if err != nil {
			return nil, errors.Wrap(tensor.ErrInvalidSplitSizes, err.Error())
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	sizes := make([]int, len(raw))
	for i, v := range raw {
		if v > math.MaxInt || v < math.MinInt {
			return nil, errors.Wrapf(tensor.ErrInvalidSplitSizes, "size %d at index %d does not fit in int", v, i)
		}
		sizes[i] = int(v)
	}
	return sizes, nil
}

func handleConcat(_ *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) < 1 {
		return nil, errors.New("concat requires at least 1 input")
	}
	if !HasAttr(node, "axis") {
		return nil, errors.New("concat requires the 'axis' attribute")
	}

	axis := int(GetAttrInt(node, "axis", 0))

	result, err := tensor.Concat(inputs, axis)
	if err != nil {
		return nil, errors.WithMessage(err, "concat")
	}
	return []*tensor.RawTensor{result}, nil
}

func handleIdentity(_ *Context, _ *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 1 {
		return nil, errors.Errorf("identity requires 1 input, got %d", len(inputs))
	}
	return inputs, nil
}
