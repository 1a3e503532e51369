// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

// newInput builds x = [[1], [2]], y = [[1], [3]], θ = [0, 1].
func newInput(t *testing.T, b *Batch) {
	t.Helper()
	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2, 1})
	require.NoError(t, err)
	y, err := tensor.FromSlice([]float64{1, 3}, tensor.Shape{2, 1})
	require.NoError(t, err)
	theta, err := tensor.FromSlice([]float64{0, 1}, tensor.Shape{2, 1})
	require.NoError(t, err)
	b.Input.SetData(x)
	b.Input.SetDependentVariables(y)
	b.Input.SetArgument(theta)
}

func TestMSE_AllResults(t *testing.T) {
	b, err := NewBatch(tensor.Float64, algorithm.DefaultDense, Parameter{ResultsToCompute: AllResults})
	require.NoError(t, err)
	newInput(t, b)
	require.NoError(t, b.Compute())

	res := b.Result()
	assert.InDelta(t, 0.25, res.Value().AsFloat64()[0], 1e-12)
	assert.InDeltaSlice(t, []float64{-0.5, -1}, res.Gradient().AsFloat64(), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 1.5, 1.5, 2.5}, res.Hessian().AsFloat64(), 1e-12)
}

func TestMSE_ResultsToCompute(t *testing.T) {
	b, err := NewBatch(tensor.Float64, algorithm.DefaultDense, DefaultParameter())
	require.NoError(t, err)
	newInput(t, b)
	require.NoError(t, b.Compute())

	assert.NotNil(t, b.Result().Value())
	assert.NotNil(t, b.Result().Gradient())
	assert.Nil(t, b.Result().Hessian(), "hessian was not requested")

	b.Parameter.ResultsToCompute = HessianResult
	require.NoError(t, b.Compute())
	assert.Equal(t, tensor.Shape{2, 2}, b.Result().Hessian().Shape())
}

func TestMSE_Validation(t *testing.T) {
	tests := []struct {
		name   string
		par    Parameter
		mutate func(in *Input)
		want   error
	}{
		{"empty mask", Parameter{}, func(*Input) {}, algorithm.ErrIncorrectParameter},
		{"unknown bit", Parameter{ResultsToCompute: 1 << 5}, func(*Input) {}, algorithm.ErrIncorrectParameter},
		{"missing targets", DefaultParameter(), func(in *Input) { in.SetDependentVariables(nil) }, algorithm.ErrNullTensor},
		{"wrong argument length", DefaultParameter(), func(in *Input) {
			in.SetArgument(tensor.MustNew(tensor.Shape{3, 1}, tensor.Float64))
		}, algorithm.ErrIncorrectSizeOfDimension},
		{"float32 input in float64 batch", DefaultParameter(), func(in *Input) {
			in.SetArgument(tensor.MustNew(tensor.Shape{2, 1}, tensor.Float32))
		}, algorithm.ErrIncorrectTypeOfTensor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBatch(tensor.Float64, algorithm.DefaultDense, tt.par)
			require.NoError(t, err)
			newInput(t, b)
			tt.mutate(b.Input)
			assert.ErrorIs(t, b.Compute(), tt.want)
			assert.Nil(t, b.Result().Value())
		})
	}
}

func TestMSE_Float32(t *testing.T) {
	b, err := NewBatch(tensor.Float32, algorithm.DefaultDense, Parameter{ResultsToCompute: ValueResult})
	require.NoError(t, err)
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1})
	y, _ := tensor.FromSlice([]float32{1, 3}, tensor.Shape{2, 1})
	theta, _ := tensor.FromSlice([]float32{0, 1}, tensor.Shape{2, 1})
	b.Input.SetData(x)
	b.Input.SetDependentVariables(y)
	b.Input.SetArgument(theta)

	require.NoError(t, b.Compute())
	assert.InDelta(t, 0.25, b.Result().Value().AsFloat32()[0], 1e-6)
}
