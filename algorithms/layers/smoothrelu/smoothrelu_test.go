// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package smoothrelu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func TestSmoothReLU_ForwardBackward(t *testing.T) {
	fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, Parameter{})
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float64, algorithm.DefaultDense, Parameter{})
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float64{-3, 0, 3}, tensor.Shape{3})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	assert.True(t, fwd.Result().Aux(AuxData).SharesBuffer(x), "auxData is the forward input")
	for i, xv := range x.AsFloat64() {
		assert.InDelta(t, math.Log1p(math.Exp(xv)), fwd.Result().Value().AsFloat64()[i], 1e-12)
	}

	g, _ := tensor.FromSlice([]float64{2, 2, 2}, tensor.Shape{3})
	bwd.Input.SetInputGradient(g)
	require.NoError(t, bwd.Compute())
	assert.InDelta(t, 1.0, bwd.Result().Gradient().AsFloat64()[1], 1e-12)
}

func TestSmoothReLU_MissingData(t *testing.T) {
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, Parameter{})
	require.NoError(t, err)

	err = fwd.Compute()
	assert.ErrorIs(t, err, algorithm.ErrNullTensor)
	assert.False(t, fwd.Result().LayerData().Computed())
}

func TestSmoothReLU_PredictionStage(t *testing.T) {
	par := Parameter{}
	par.PredictionStage = true
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	fwd.Input.SetData(tensor.MustNew(tensor.Shape{2}, tensor.Float32))
	require.NoError(t, fwd.Compute())
	assert.Nil(t, fwd.Result().Aux(AuxData))

	bwd.Input.SetInputGradient(tensor.MustNew(tensor.Shape{2}, tensor.Float32))
	assert.ErrorIs(t, bwd.Compute(), algorithm.ErrForwardNotComputed)
}
