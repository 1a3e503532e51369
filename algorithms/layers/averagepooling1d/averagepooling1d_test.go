// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package averagepooling1d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func TestAvgPool1D_ForwardBackward(t *testing.T) {
	par := DefaultParameter(1)
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float32{
		1, 5, 3, 2,
		7, 1, 0, 8,
	}, tensor.Shape{2, 4})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	res := fwd.Result()
	assert.Equal(t, tensor.Shape{2, 2}, res.Value().Shape())
	assert.InDeltaSlice(t, []float32{3, 2.5, 4, 4}, res.Value().AsFloat32(), 1e-6)
	assert.Equal(t, []int32{2, 4}, res.Aux(AuxInputDimensions).AsInt32())

	g, _ := tensor.FromSlice([]float32{2, 4, 6, 8}, tensor.Shape{2, 2})
	bwd.Input.SetInputGradient(g)
	require.NoError(t, bwd.Compute())

	grad := bwd.Result().Gradient()
	assert.Equal(t, tensor.Shape{2, 4}, grad.Shape(), "gradient is shaped like the forward data")
	assert.InDeltaSlice(t, []float32{1, 1, 2, 2, 3, 3, 4, 4}, grad.AsFloat32(), 1e-6)
}

func TestAvgPool1D_OverlapAndPadding(t *testing.T) {
	par := Parameter{KernelSize: 3, Stride: 2, Padding: 1, Index: 0}
	fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float64{3, 6, 9, 12, 15}, tensor.Shape{5})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	// windows: [pad,3,6] [6,9,12] [12,15,pad]
	assert.InDeltaSlice(t, []float64{3, 9, 9}, fwd.Result().Value().AsFloat64(), 1e-12)

	g, _ := tensor.FromSlice([]float64{3, 3, 3}, tensor.Shape{3})
	bwd.Input.SetInputGradient(g)
	require.NoError(t, bwd.Compute())
	// positions 1 and 3 sit in two windows each
	assert.InDeltaSlice(t, []float64{1, 2, 1, 2, 1}, bwd.Result().Gradient().AsFloat64(), 1e-12)
}

func TestAvgPool1D_InvalidParameter(t *testing.T) {
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

func TestAvgPool1D_BackwardChecksLinkedWindow(t *testing.T) {
	fwd, _ := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, DefaultParameter(1))
	bwd, _ := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, Parameter{KernelSize: 2, Stride: 1, Index: 1})
	layers.Link(fwd.Result(), bwd.Input)

	fwd.Input.SetData(tensor.MustNew(tensor.Shape{2, 4}, tensor.Float32))
	require.NoError(t, fwd.Compute())

	bwd.Input.SetInputGradient(tensor.MustNew(tensor.Shape{2, 2}, tensor.Float32))
	assert.ErrorIs(t, bwd.Compute(), algorithm.ErrIncorrectSizeOfDimension)
}

func TestAvgPool1D_PredictionStage(t *testing.T) {
	par := DefaultParameter(0)
	par.PredictionStage = true
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, DefaultParameter(0))
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	x, _ := tensor.FromSlice([]float32{4, 2, 1, 9}, tensor.Shape{4})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())
	assert.InDeltaSlice(t, []float32{3, 5}, fwd.Result().Value().AsFloat32(), 1e-6)
	assert.Nil(t, fwd.Result().Aux(AuxInputDimensions))

	bwd.Input.SetInputGradient(tensor.MustNew(tensor.Shape{2}, tensor.Float32))
	assert.ErrorIs(t, bwd.Compute(), algorithm.ErrForwardNotComputed)
}
