package onnx

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/conformance/internal/onnx/operators"
	"github.com/born-ml/conformance/internal/tensor"
)

func splitModel(t *testing.T, opset int64, node *operators.Node, inputs []*tensor.RawTensor, outputs []*tensor.RawTensor) *Model {
	t.Helper()
	proto, err := BuildNodeModel("split", node, inputs, outputs, opset)
	require.NoError(t, err)

	model, err := LoadFromBytes(MarshalModel(proto))
	require.NoError(t, err)
	return model
}

func TestLoadAndRunSplitOpset13(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	sizes, err := tensor.Vector([]int64{2, 4})
	require.NoError(t, err)
	out1, err := tensor.Vector([]float32{1, 2})
	require.NoError(t, err)
	out2, err := tensor.Vector([]float32{3, 4, 5, 6})
	require.NoError(t, err)

	node := operators.MakeNode("Split", []string{"input", "split"}, []string{"output_1", "output_2"},
		operators.IntAttr("axis", 0))
	model := splitModel(t, 13, node, []*tensor.RawTensor{input, sizes}, []*tensor.RawTensor{out1, out2})

	assert.Equal(t, int64(13), model.OpsetVersion())
	assert.Equal(t, []string{"input", "split"}, model.InputNames())
	assert.Equal(t, []string{"output_1", "output_2"}, model.OutputNames())

	got, err := model.Run(map[string]*tensor.RawTensor{"input": input, "split": sizes})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, tensor.Equal(out1, got["output_1"]), "output_1 = %v", got["output_1"])
	assert.True(t, tensor.Equal(out2, got["output_2"]), "output_2 = %v", got["output_2"])
}

func TestLoadAndRunSplitAttributeOpset11(t *testing.T) {
	input, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, tensor.Shape{2, 6})
	require.NoError(t, err)
	out1, err := tensor.FromSlice([]float32{1, 2, 7, 8}, tensor.Shape{2, 2})
	require.NoError(t, err)
	out2, err := tensor.FromSlice([]float32{3, 4, 5, 6, 9, 10, 11, 12}, tensor.Shape{2, 4})
	require.NoError(t, err)

	node := operators.MakeNode("Split", []string{"input"}, []string{"output_1", "output_2"},
		operators.IntAttr("axis", 1), operators.IntsAttr("split", 2, 4))
	model := splitModel(t, 11, node, []*tensor.RawTensor{input}, []*tensor.RawTensor{out1, out2})

	got, err := model.Run(map[string]*tensor.RawTensor{"input": input})
	require.NoError(t, err)
	assert.True(t, tensor.Equal(out1, got["output_1"]))
	assert.True(t, tensor.Equal(out2, got["output_2"]))
}

func TestLoadAndRunSplitNumOutputs(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	outs := make([]*tensor.RawTensor, 0, 3)
	for _, part := range [][]float32{{1, 2, 3}, {4, 5, 6}, {7}} {
		out, err := tensor.Vector(part)
		require.NoError(t, err)
		outs = append(outs, out)
	}

	node := operators.MakeNode("Split", []string{"input"}, []string{"output_1", "output_2", "output_3"},
		operators.IntAttr("axis", 0), operators.IntAttr("num_outputs", 3))
	model := splitModel(t, 18, node, []*tensor.RawTensor{input}, outs)

	got, err := model.Run(map[string]*tensor.RawTensor{"input": input})
	require.NoError(t, err)
	for i, name := range model.OutputNames() {
		assert.True(t, tensor.Equal(outs[i], got[name]), "%s = %v", name, got[name])
	}
}

func TestRunReportsSplitErrors(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2, 3})
	require.NoError(t, err)
	sizes, err := tensor.Vector([]int64{1, 1})
	require.NoError(t, err)

	node := operators.MakeNode("Split", []string{"input", "split"}, []string{"a", "b"})
	model := splitModel(t, 13, node, []*tensor.RawTensor{input, sizes}, []*tensor.RawTensor{input, input})

	_, err = model.Run(map[string]*tensor.RawTensor{"input": input, "split": sizes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrInvalidSplitSizes), "got %v", err)
}

func TestRunRejectsWrappingSplitSizes(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	sizes, err := tensor.Vector([]int64{math.MaxInt64, math.MaxInt64, 8})
	require.NoError(t, err)

	node := operators.MakeNode("Split", []string{"input", "split"}, []string{"a", "b", "c"})
	model := splitModel(t, 13, node, []*tensor.RawTensor{input, sizes}, []*tensor.RawTensor{input, input, input})

	_, err = model.Run(map[string]*tensor.RawTensor{"input": input, "split": sizes})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrInvalidSplitSizes), "got %v", err)
}

func TestRunMissingInput(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2})
	require.NoError(t, err)

	node := operators.MakeNode("Identity", []string{"x"}, []string{"y"})
	model := splitModel(t, 13, node, []*tensor.RawTensor{input}, []*tensor.RawTensor{input})

	_, err = model.Run(nil)
	assert.ErrorContains(t, err, "missing input: x")
}

func TestRunChainedNodes(t *testing.T) {
	input, err := tensor.Vector([]int64{1, 2, 3, 4})
	require.NoError(t, err)

	proto := &ModelProto{
		IRVersion:   IRVersion,
		OpsetImport: []OperatorSetID{{Version: 18}},
		Graph: &GraphProto{
			// Deliberately out of order.
			Nodes: []NodeProto{
				NodeFromOperator(operators.MakeNode("Concat", []string{"b", "a"}, []string{"y"}, operators.IntAttr("axis", 0))),
				NodeFromOperator(operators.MakeNode("Split", []string{"x"}, []string{"a", "b"}, operators.IntAttr("num_outputs", 2))),
			},
			Inputs:  []ValueInfoProto{ValueInfoFromRaw("x", input)},
			Outputs: []ValueInfoProto{ValueInfoFromRaw("y", input)},
		},
	}
	model, err := LoadFromProto(proto, DefaultLoadOptions())
	require.NoError(t, err)

	got, err := model.Run(map[string]*tensor.RawTensor{"x": input})
	require.NoError(t, err)
	values, err := tensor.Values[int64](got["y"])
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 1, 2}, values)
}

func TestLoadStrictModeRejectsUnknownOps(t *testing.T) {
	proto := &ModelProto{
		OpsetImport: []OperatorSetID{{Version: 13}},
		Graph: &GraphProto{
			Nodes: []NodeProto{{OpType: "Conv", Inputs: []string{"x"}, Outputs: []string{"y"}}},
		},
	}

	_, err := LoadFromProto(proto, DefaultLoadOptions())
	assert.ErrorContains(t, err, "unsupported operators: [Conv]")

	lenient := DefaultLoadOptions()
	lenient.StrictMode = false
	_, err = LoadFromProto(proto, lenient)
	assert.NoError(t, err)
}

func TestLoadCustomOps(t *testing.T) {
	input, err := tensor.Vector([]float32{1})
	require.NoError(t, err)

	called := false
	opts := DefaultLoadOptions()
	opts.CustomOps = map[string]operators.OpHandler{
		"Noop": func(_ *operators.Context, _ *operators.Node, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
			called = true
			return in, nil
		},
	}
	proto, err := BuildNodeModel("noop", operators.MakeNode("Noop", []string{"x"}, []string{"y"}),
		[]*tensor.RawTensor{input}, []*tensor.RawTensor{input}, 13)
	require.NoError(t, err)

	model, err := LoadFromProto(proto, opts)
	require.NoError(t, err)
	_, err = model.Run(map[string]*tensor.RawTensor{"x": input})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoadFile(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2})
	require.NoError(t, err)
	proto, err := BuildNodeModel("identity", operators.MakeNode("Identity", []string{"x"}, []string{"y"}),
		[]*tensor.RawTensor{input}, []*tensor.RawTensor{input}, 13)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.onnx")
	_, err = WriteModelFile(path, proto)
	require.NoError(t, err)

	model, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, model.InputNames())

	_, err = Load(filepath.Join(t.TempDir(), "nope.onnx"))
	assert.ErrorContains(t, err, "failed to parse ONNX file")
}

func TestBuildNodeModelOptionalInputs(t *testing.T) {
	input, err := tensor.Vector([]float32{1, 2})
	require.NoError(t, err)

	node := operators.MakeNode("Split", []string{"input", ""}, []string{"a", "b"})
	proto, err := BuildNodeModel("optional", node, []*tensor.RawTensor{input}, []*tensor.RawTensor{input, input}, 13)
	require.NoError(t, err)
	assert.Len(t, proto.Graph.Inputs, 1)
	assert.Equal(t, []string{"input", ""}, proto.Graph.Nodes[0].Inputs)

	_, err = BuildNodeModel("bad", node, nil, []*tensor.RawTensor{input, input}, 13)
	assert.Error(t, err)

	_, err = BuildNodeModel("bad", node, []*tensor.RawTensor{input}, []*tensor.RawTensor{input}, 13)
	assert.Error(t, err)
}

func TestGetModelInfo(t *testing.T) {
	info := GetModelInfo(splitModelProto())
	assert.Equal(t, int64(IRVersion), info.IRVersion)
	assert.Equal(t, int64(13), info.OpsetVersion)
	assert.Equal(t, Producer, info.ProducerName)
	assert.Equal(t, []string{"input"}, info.InputNames)
	assert.Equal(t, []string{"output_1"}, info.OutputNames)
	assert.Equal(t, []string{"Split"}, info.OpTypes)
}

func TestListSupportedOps(t *testing.T) {
	assert.Equal(t, []string{"Concat", "Identity", "Split"}, ListSupportedOps())
}
