package tensor

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 0, Shape{2, 0, 3}.NumElements())
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{0}.Validate())
	require.NoError(t, Shape{2, 3}.Validate())
	require.NoError(t, Shape{1 << 31, 1 << 31}.Validate())
	require.Error(t, Shape{2, -1}.Validate())
}

func TestShapeValidateOverflow(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"product wraps to zero", Shape{1 << 32, 1 << 32}},
		{"product wraps to positive", Shape{1<<62 + 1, 4}},
		{"zero dimension does not hide overflow", Shape{0, 1 << 40, 1 << 40}},
		{"max int squared", Shape{math.MaxInt, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "overflows")
		})
	}
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{}, Shape{}.ComputeStrides())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "(2, 3)", Shape{2, 3}.String())
	assert.Equal(t, "()", Shape{}.String())
}

func TestShapeCloneIsIndependent(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])
}

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		axis, rank, want int
	}{
		{0, 1, 0},
		{-1, 1, 0},
		{1, 3, 1},
		{-1, 3, 2},
		{-3, 3, 0},
	}
	for _, tt := range tests {
		got, err := NormalizeAxis(tt.axis, tt.rank)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "axis=%d rank=%d", tt.axis, tt.rank)
	}

	for _, bad := range []struct{ axis, rank int }{{3, 3}, {-4, 3}, {0, 0}} {
		_, err := NormalizeAxis(bad.axis, bad.rank)
		assert.True(t, errors.Is(err, ErrInvalidAxis), "axis=%d rank=%d", bad.axis, bad.rank)
	}
}
