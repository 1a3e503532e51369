// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package softmax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func TestSoftmax_ForwardBackward(t *testing.T) {
	par := DefaultParameter()
	fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float64{1, 2, 3, 0, 0, 0}, tensor.Shape{2, 3})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	v := fwd.Result().Value().AsFloat64()
	assert.InDelta(t, 1.0, v[0]+v[1]+v[2], 1e-12)
	assert.InDelta(t, 1.0/3, v[3], 1e-12)

	// A gradient constant along the softmax dimension has no effect.
	g, _ := tensor.FromSlice([]float64{5, 5, 5, -1, -1, -1}, tensor.Shape{2, 3})
	bwd.Input.SetInputGradient(g)
	require.NoError(t, bwd.Compute())
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0, 0}, bwd.Result().Gradient().AsFloat64(), 1e-12)
}

func TestSoftmax_DimensionOutOfRange(t *testing.T) {
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, Parameter{Dimension: 2})
	require.NoError(t, err)
	fwd.Input.SetData(tensor.MustNew(tensor.Shape{2, 3}, tensor.Float32))

	err = fwd.Compute()
	assert.ErrorIs(t, err, algorithm.ErrIncorrectParameter)
	assert.Nil(t, fwd.Result().Value())
}

func TestSoftmax_Clone(t *testing.T) {
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, DefaultParameter())
	require.NoError(t, err)
	fwd.Input.SetData(tensor.MustNew(tensor.Shape{2, 3}, tensor.Float32))

	clone := fwd.Clone()
	clone.Parameter.Dimension = 0
	require.NoError(t, clone.Compute())
	require.NoError(t, fwd.Compute())

	assert.Equal(t, 1, fwd.Parameter.Dimension)
	// Columns of a zero matrix along dimension 0 hold two equal entries.
	assert.Equal(t, float32(0.5), clone.Result().Value().AsFloat32()[0])
	assert.InDelta(t, 1.0/3, fwd.Result().Value().AsFloat32()[0], 1e-6)
}
