package conformance

import (
	"strconv"

	"github.com/janpfeifer/must"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

func vec[T tensor.DType](data ...T) *tensor.RawTensor {
	return must.M1(tensor.Vector(data))
}

func mat[T tensor.DType](rows, cols int, data ...T) *tensor.RawTensor {
	return must.M1(tensor.FromSlice(data, tensor.Shape{rows, cols}))
}

func outputNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "output_" + strconv.Itoa(i+1)
	}
	return names
}

func mustExpect(node *operators.Node, inputs, outputs []*tensor.RawTensor, name string) Case {
	return must.M1(Expect(node, inputs, outputs, name))
}

// SplitCases returns the Split fixture set in generation order.
func SplitCases() []Case {
	input1D := vec[float32](1, 2, 3, 4, 5, 6)
	input2D := mat[float32](2, 6,
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12)
	sizes := vec[int64](2, 4)

	cases := []Case{
		mustExpect(
			operators.MakeNode("Split", []string{"input"}, outputNames(3), operators.IntAttr("axis", 0)),
			[]*tensor.RawTensor{input1D},
			[]*tensor.RawTensor{vec[float32](1, 2), vec[float32](3, 4), vec[float32](5, 6)},
			"test_split_equal_parts_1d"),
		mustExpect(
			operators.MakeNode("Split", []string{"input", "split"}, outputNames(2), operators.IntAttr("axis", 0)),
			[]*tensor.RawTensor{input1D, sizes},
			[]*tensor.RawTensor{vec[float32](1, 2), vec[float32](3, 4, 5, 6)},
			"test_split_variable_parts_1d"),
		mustExpect(
			operators.MakeNode("Split", []string{"input"}, outputNames(2), operators.IntAttr("axis", 1)),
			[]*tensor.RawTensor{input2D},
			[]*tensor.RawTensor{
				mat[float32](2, 3, 1, 2, 3, 7, 8, 9),
				mat[float32](2, 3, 4, 5, 6, 10, 11, 12),
			},
			"test_split_equal_parts_2d"),
		mustExpect(
			operators.MakeNode("Split", []string{"input", "split"}, outputNames(2), operators.IntAttr("axis", 1)),
			[]*tensor.RawTensor{input2D, sizes},
			[]*tensor.RawTensor{
				mat[float32](2, 2, 1, 2, 7, 8),
				mat[float32](2, 4, 3, 4, 5, 6, 9, 10, 11, 12),
			},
			"test_split_variable_parts_2d"),
		mustExpect(
			operators.MakeNode("Split", []string{"input"}, outputNames(3)),
			[]*tensor.RawTensor{input1D},
			[]*tensor.RawTensor{vec[float32](1, 2), vec[float32](3, 4), vec[float32](5, 6)},
			"test_split_equal_parts_default_axis"),
		mustExpect(
			operators.MakeNode("Split", []string{"input", "split"}, outputNames(2)),
			[]*tensor.RawTensor{input1D, sizes},
			[]*tensor.RawTensor{vec[float32](1, 2), vec[float32](3, 4, 5, 6)},
			"test_split_variable_parts_default_axis"),
		mustExpect(
			operators.MakeNode("Split", []string{"input", "split"}, outputNames(3)),
			[]*tensor.RawTensor{vec[float32](), vec[int64](0, 0, 0)},
			[]*tensor.RawTensor{vec[float32](), vec[float32](), vec[float32]()},
			"test_split_zero_size_splits"),
		mustExpect(
			operators.MakeNode("Split", []string{"input", "split"}, outputNames(2), operators.IntAttr("axis", -1)),
			[]*tensor.RawTensor{input2D, sizes},
			[]*tensor.RawTensor{
				mat[float32](2, 2, 1, 2, 7, 8),
				mat[float32](2, 4, 3, 4, 5, 6, 9, 10, 11, 12),
			},
			"test_split_negative_axis"),
	}

	// Uneven equal parts need num_outputs, introduced in opset 18.
	uneven1D := mustExpect(
		operators.MakeNode("Split", []string{"input"}, outputNames(4),
			operators.IntAttr("axis", 0), operators.IntAttr("num_outputs", 4)),
		[]*tensor.RawTensor{vec[float32](1, 2, 3, 4, 5, 6, 7)},
		[]*tensor.RawTensor{vec[float32](1, 2), vec[float32](3, 4), vec[float32](5, 6), vec[float32](7)},
		"test_split_1d_uneven_split_opset18")
	uneven1D.MinOpset = 18

	uneven2D := mustExpect(
		operators.MakeNode("Split", []string{"input"}, outputNames(3),
			operators.IntAttr("axis", 1), operators.IntAttr("num_outputs", 3)),
		[]*tensor.RawTensor{mat[float32](2, 8,
			1, 2, 3, 4, 5, 6, 7, 8,
			9, 10, 11, 12, 13, 14, 15, 16)},
		[]*tensor.RawTensor{
			mat[float32](2, 3, 1, 2, 3, 9, 10, 11),
			mat[float32](2, 3, 4, 5, 6, 12, 13, 14),
			mat[float32](2, 2, 7, 8, 15, 16),
		},
		"test_split_2d_uneven_split_opset18")
	uneven2D.MinOpset = 18

	return append(cases, uneven1D, uneven2D)
}
