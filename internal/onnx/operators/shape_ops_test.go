package operators

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/conformance/internal/tensor"
)

func vec[T tensor.DType](t *testing.T, data ...T) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Vector(data)
	require.NoError(t, err)
	return r
}

func values(t *testing.T, outs []*tensor.RawTensor) [][]float32 {
	t.Helper()
	got := make([][]float32, len(outs))
	for i, o := range outs {
		v, err := tensor.Values[float32](o)
		require.NoError(t, err)
		got[i] = v
	}
	return got
}

func TestSplitHandler(t *testing.T) {
	r := NewRegistry()
	input := vec[float32](t, 1, 2, 3, 4, 5, 6)

	t.Run("declared outputs drive equal parts", func(t *testing.T) {
		node := MakeNode("Split", []string{"input"}, []string{"o1", "o2", "o3"}, IntAttr("axis", 0))
		outs, err := r.Execute(DefaultContext(), node, []*tensor.RawTensor{input})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, values(t, outs))
	})

	t.Run("split input", func(t *testing.T) {
		node := MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2"})
		outs, err := r.Execute(&Context{Opset: 13}, node, []*tensor.RawTensor{input, vec[int64](t, 2, 4)})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4, 5, 6}}, values(t, outs))
	})

	t.Run("omitted split input", func(t *testing.T) {
		node := MakeNode("Split", []string{"input", ""}, []string{"o1", "o2"})
		outs, err := r.Execute(DefaultContext(), node, []*tensor.RawTensor{input, nil})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, values(t, outs))
	})

	t.Run("split attribute before opset 13", func(t *testing.T) {
		node := MakeNode("Split", []string{"input"}, []string{"o1", "o2"}, IntsAttr("split", 2, 4))
		outs, err := r.Execute(&Context{Opset: 11}, node, []*tensor.RawTensor{input})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4, 5, 6}}, values(t, outs))
	})

	t.Run("num_outputs", func(t *testing.T) {
		uneven := vec[float32](t, 1, 2, 3, 4, 5, 6, 7)
		node := MakeNode("Split", []string{"input"}, []string{"o1", "o2", "o3", "o4"}, IntAttr("num_outputs", 4))
		outs, err := r.Execute(&Context{Opset: 18}, node, []*tensor.RawTensor{uneven})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}, {7}}, values(t, outs))
	})

	t.Run("zero size splits", func(t *testing.T) {
		empty := vec[float32](t)
		node := MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2", "o3"})
		outs, err := r.Execute(DefaultContext(), node, []*tensor.RawTensor{empty, vec[int64](t, 0, 0, 0)})
		require.NoError(t, err)
		require.Len(t, outs, 3)
		for _, o := range outs {
			assert.Equal(t, tensor.Shape{0}, o.Shape())
		}
	})
}

func TestSplitHandlerErrors(t *testing.T) {
	r := NewRegistry()
	input := vec[float32](t, 1, 2, 3, 4, 5, 6)

	tests := []struct {
		name   string
		node   *Node
		inputs []*tensor.RawTensor
		want   error
	}{
		{
			name:   "axis out of range",
			node:   MakeNode("Split", []string{"input"}, []string{"o1", "o2"}, IntAttr("axis", 1)),
			inputs: []*tensor.RawTensor{input},
			want:   tensor.ErrInvalidAxis,
		},
		{
			name:   "sizes do not sum",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2"}),
			inputs: []*tensor.RawTensor{input, vec[int64](t, 2, 2)},
			want:   tensor.ErrInvalidSplitSizes,
		},
		{
			name:   "sizes disagree with outputs",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2", "o3"}),
			inputs: []*tensor.RawTensor{input, vec[int64](t, 2, 4)},
			want:   tensor.ErrInvalidArity,
		},
		{
			name:   "num_outputs with sizes",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2"}, IntAttr("num_outputs", 2)),
			inputs: []*tensor.RawTensor{input, vec[int64](t, 2, 4)},
			want:   tensor.ErrInvalidArity,
		},
		{
			name:   "num_outputs disagrees with outputs",
			node:   MakeNode("Split", []string{"input"}, []string{"o1", "o2"}, IntAttr("num_outputs", 3)),
			inputs: []*tensor.RawTensor{input},
			want:   tensor.ErrInvalidArity,
		},
		{
			name:   "no outputs",
			node:   MakeNode("Split", []string{"input"}, nil),
			inputs: []*tensor.RawTensor{input},
			want:   tensor.ErrInvalidArity,
		},
		{
			name:   "int64 sizes wrap around to extent",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2", "o3"}),
			inputs: []*tensor.RawTensor{input, vec[int64](t, math.MaxInt64, math.MaxInt64, 8)},
			want:   tensor.ErrInvalidSplitSizes,
		},
		{
			name:   "int64 size beyond extent",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2"}),
			inputs: []*tensor.RawTensor{input, vec[int64](t, 2, math.MaxInt64)},
			want:   tensor.ErrInvalidSplitSizes,
		},
		{
			name:   "float split sizes",
			node:   MakeNode("Split", []string{"input", "split"}, []string{"o1", "o2"}),
			inputs: []*tensor.RawTensor{input, vec[float32](t, 2, 4)},
			want:   tensor.ErrInvalidSplitSizes,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outs, err := r.Execute(DefaultContext(), tt.node, tt.inputs)
			require.Error(t, err)
			assert.Nil(t, outs)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("missing input", func(t *testing.T) {
		_, err := r.Execute(DefaultContext(), MakeNode("Split", nil, []string{"o1"}), nil)
		require.Error(t, err)
	})
}

func TestConcatHandler(t *testing.T) {
	r := NewRegistry()

	node := MakeNode("Concat", []string{"a", "b"}, []string{"out"}, IntAttr("axis", 0))
	outs, err := r.Execute(DefaultContext(), node, []*tensor.RawTensor{vec[float32](t, 1, 2), vec[float32](t, 3)})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2, 3}}, values(t, outs))

	_, err = r.Execute(DefaultContext(), MakeNode("Concat", []string{"a"}, []string{"out"}), []*tensor.RawTensor{vec[float32](t, 1)})
	assert.Error(t, err)
}

func TestIdentityHandler(t *testing.T) {
	r := NewRegistry()
	in := vec[int64](t, 4, 5)

	outs, err := r.Execute(DefaultContext(), MakeNode("Identity", []string{"x"}, []string{"y"}), []*tensor.RawTensor{in})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Same(t, in, outs[0])
}
