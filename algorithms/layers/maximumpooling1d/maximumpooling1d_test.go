// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package maximumpooling1d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func TestMaxPool1D_ForwardBackward(t *testing.T) {
	par := DefaultParameter(1)
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float32{
		1, 5, 3, 2,
		7, 0, 1, 8,
	}, tensor.Shape{2, 4})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	res := fwd.Result()
	assert.Equal(t, tensor.Shape{2, 2}, res.Value().Shape())
	assert.Equal(t, []float32{5, 3, 7, 8}, res.Value().AsFloat32())
	assert.Equal(t, []int32{1, 2, 0, 3}, res.Aux(AuxSelectedIndices).AsInt32())
	assert.Equal(t, []int32{2, 4}, res.Aux(AuxInputDimensions).AsInt32())

	g, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	bwd.Input.SetInputGradient(g)
	require.NoError(t, bwd.Compute())

	grad := bwd.Result().Gradient()
	assert.Equal(t, tensor.Shape{2, 4}, grad.Shape(), "gradient is shaped like the forward data")
	assert.Equal(t, []float32{0, 1, 2, 0, 3, 0, 0, 4}, grad.AsFloat32())
}

func TestMaxPool1D_Padding(t *testing.T) {
	par := Parameter{KernelSize: 3, Stride: 2, Padding: 1, Index: 0}
	fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)

	x, _ := tensor.FromSlice([]float64{-1, -2, -3, -4, -5}, tensor.Shape{5})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	// windows: [pad,-1,-2] [-2,-3,-4] [-4,-5,pad]
	assert.Equal(t, []float64{-1, -2, -4}, fwd.Result().Value().AsFloat64())
}

func TestMaxPool1D_InvalidParameter(t *testing.T) {
	tests := []struct {
		name string
		par  Parameter
		want error
	}{
		{"zero kernel", Parameter{KernelSize: 0, Stride: 1}, algorithm.ErrIncorrectParameter},
		{"zero stride", Parameter{KernelSize: 2, Stride: 0}, algorithm.ErrIncorrectParameter},
		{"padding as wide as kernel", Parameter{KernelSize: 2, Stride: 1, Padding: 2}, algorithm.ErrIncorrectParameter},
		{"index out of range", Parameter{KernelSize: 2, Stride: 1, Index: 3}, algorithm.ErrIncorrectParameter},
		{"kernel longer than data", Parameter{KernelSize: 9, Stride: 1, Index: 1}, algorithm.ErrIncorrectSizeOfDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, tt.par)
			require.NoError(t, err)
			fwd.Input.SetData(tensor.MustNew(tensor.Shape{2, 4}, tensor.Float32))
			assert.ErrorIs(t, fwd.Compute(), tt.want)
		})
	}
}

func TestMaxPool1D_BackwardChecksLinkedWindow(t *testing.T) {
	fwd, _ := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, DefaultParameter(1))
	bwd, _ := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, Parameter{KernelSize: 2, Stride: 1, Index: 1})
	layers.Link(fwd.Result(), bwd.Input)

	fwd.Input.SetData(tensor.MustNew(tensor.Shape{2, 4}, tensor.Float32))
	require.NoError(t, fwd.Compute())

	bwd.Input.SetInputGradient(tensor.MustNew(tensor.Shape{2, 2}, tensor.Float32))
	assert.ErrorIs(t, bwd.Compute(), algorithm.ErrIncorrectSizeOfDimension)
}

func TestMaxPool1D_PredictionStage(t *testing.T) {
	par := DefaultParameter(0)
	par.PredictionStage = true
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)

	x, _ := tensor.FromSlice([]float32{4, 1, 2, 9}, tensor.Shape{4})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())
	assert.Equal(t, []float32{4, 9}, fwd.Result().Value().AsFloat32())
	assert.Nil(t, fwd.Result().Aux(AuxSelectedIndices))
}
