package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat(t *testing.T) {
	a := mustFromSlice(t, []float32{1, 2, 7, 8}, Shape{2, 2})
	b := mustFromSlice(t, []float32{3, 4, 5, 6, 9, 10, 11, 12}, Shape{2, 4})

	t.Run("axis 1", func(t *testing.T) {
		got, err := Concat([]*RawTensor{a, b}, 1)
		require.NoError(t, err)
		requireValues(t, got, Shape{2, 6}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	})

	t.Run("negative axis", func(t *testing.T) {
		got, err := Concat([]*RawTensor{a, b}, -1)
		require.NoError(t, err)
		assert.Equal(t, Shape{2, 6}, got.Shape())
	})

	t.Run("single tensor is copied", func(t *testing.T) {
		got, err := Concat([]*RawTensor{a}, 0)
		require.NoError(t, err)
		assert.True(t, Equal(a, got))
		got.AsFloat32()[0] = -1
		assert.Equal(t, float32(1), a.AsFloat32()[0])
	})

	t.Run("zero-sized pieces", func(t *testing.T) {
		empty := mustFromSlice(t, []float32{}, Shape{2, 0})
		got, err := Concat([]*RawTensor{empty, a, empty}, 1)
		require.NoError(t, err)
		assert.True(t, Equal(a, got))
	})
}

func TestConcatErrors(t *testing.T) {
	a := mustFromSlice(t, []float32{1, 2, 3, 4}, Shape{2, 2})

	tests := []struct {
		name    string
		tensors []*RawTensor
		axis    int
	}{
		{"no tensors", nil, 0},
		{"axis out of range", []*RawTensor{a, a}, 2},
		{"rank mismatch", []*RawTensor{a, mustFromSlice(t, []float32{1, 2}, Shape{2})}, 0},
		{"dtype mismatch", []*RawTensor{a, mustFromSlice(t, []int64{1, 2, 3, 4}, Shape{2, 2})}, 0},
		{"shape mismatch", []*RawTensor{a, mustFromSlice(t, []float32{1, 2, 3}, Shape{1, 3})}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Concat(tt.tensors, tt.axis)
			assert.Error(t, err)
		})
	}
}
