package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
		str   string
	}{
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
		{Int32, 4, "int32"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.dtype.Size())
		assert.Equal(t, tt.str, tt.dtype.String())
		parsed, ok := ParseDataType(tt.str)
		require.True(t, ok)
		assert.Equal(t, tt.dtype, parsed)
	}
	assert.True(t, Float64.IsFloat())
	assert.False(t, Int32.IsFloat())
}

func TestShape(t *testing.T) {
	s := Shape{8, 16}
	assert.Equal(t, 128, s.NumElements())
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, "[8, 16]", s.String())
	assert.True(t, s.Equal(Shape{8, 16}))
	assert.False(t, s.Equal(Shape{16, 8}))
	assert.Equal(t, Shape{8, 4}, s.With(1, 4))
	assert.Equal(t, Shape{8, 16}, s, "With must not modify the receiver")

	require.Error(t, Shape{2, 0}.Validate())
	require.NoError(t, s.Validate())
}

func TestNew(t *testing.T) {
	t.Run("BufferSize", func(t *testing.T) {
		x, err := New(Shape{3, 5}, Float64)
		require.NoError(t, err)
		assert.Equal(t, 15, x.NumElements())
		assert.Equal(t, 15*8, x.ByteSize())
		assert.Len(t, x.Data(), 15*8)
		assert.Equal(t, "float64[3, 5]", x.String())
	})

	t.Run("InvalidShape", func(t *testing.T) {
		_, err := New(Shape{3, -1}, Float32)
		require.Error(t, err)
	})

	t.Run("ShapeIsImmutable", func(t *testing.T) {
		shape := Shape{2, 2}
		x := MustNew(shape, Float32)
		shape[0] = 7
		got := x.Shape()
		got[1] = 9
		assert.Equal(t, Shape{2, 2}, x.Shape())
	})
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Float32, x.DType())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.AsFloat32())

	_, err = FromSlice([]float64{1, 2}, Shape{3})
	require.Error(t, err)

	idx, err := FromSlice([]int32{4, 5}, Shape{2})
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5}, idx.AsInt32())
}

func TestValuesWrongType(t *testing.T) {
	x := MustNew(Shape{2}, Float32)
	assert.Panics(t, func() { _ = x.AsFloat64() })
	assert.Panics(t, func() { _ = Values[int32](x) })
}

func TestCloneSharesBuffer(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3}, Shape{3})
	require.NoError(t, err)
	assert.True(t, a.IsUnique())

	b := a.Clone()
	assert.Equal(t, 2, a.RefCount())
	assert.True(t, a.SharesBuffer(b))

	b.AsFloat64()[0] = 42
	assert.Equal(t, float64(42), a.AsFloat64()[0])

	b.Release()
	assert.True(t, a.IsUnique())
	assert.Equal(t, []float64{42, 2, 3}, a.AsFloat64(), "buffer must survive while a handle is alive")

	a.Release()
	assert.Panics(t, func() { _ = a.AsFloat64() })
}

func TestCopyDoesNotShare(t *testing.T) {
	a, err := FromSlice([]float32{1, 2}, Shape{2})
	require.NoError(t, err)
	c := a.Copy()
	assert.False(t, a.SharesBuffer(c))
	c.AsFloat32()[0] = 9
	assert.Equal(t, float32(1), a.AsFloat32()[0])
}
