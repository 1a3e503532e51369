// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/tensor"
)

func TestTensorAPI(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	assert.True(t, x.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, 6, x.NumElements())
	assert.Equal(t, 24, x.ByteSize())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Values[float32](x))
}

func TestTensorSharing(t *testing.T) {
	x := tensor.MustNew(tensor.Shape{4}, tensor.Float64)
	y := x.Clone()
	assert.Equal(t, 2, x.RefCount())
	assert.True(t, y.SharesBuffer(x))

	y.AsFloat64()[0] = 7
	assert.Equal(t, 7.0, x.AsFloat64()[0])

	y.Release()
	assert.True(t, x.IsUnique())
}

func TestParseDataType(t *testing.T) {
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Int32} {
		got, ok := tensor.ParseDataType(dt.String())
		require.True(t, ok)
		assert.Equal(t, dt, got)
	}
	_, ok := tensor.ParseDataType("bool")
	assert.False(t, ok)
}

func TestNewInvalidShape(t *testing.T) {
	_, err := tensor.New(tensor.Shape{2, 0}, tensor.Float32)
	assert.Error(t, err)
	assert.Panics(t, func() { tensor.MustNew(tensor.Shape{-1}, tensor.Float32) })
}
