// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dropout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

func ones(n int) *tensor.Tensor {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1
	}
	t, _ := tensor.FromSlice(data, tensor.Shape{n})
	return t
}

func TestDropout_ForwardBackward(t *testing.T) {
	par := DefaultParameter()
	fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := NewBackwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	fwd.Input.SetData(ones(200))
	require.NoError(t, fwd.Compute())

	mask := fwd.Result().Aux(AuxRetainMask).AsFloat64()
	value := fwd.Result().Value().AsFloat64()
	kept := 0
	for i, m := range mask {
		assert.Contains(t, []float64{0, 2}, m)
		assert.Equal(t, m, value[i])
		if m != 0 {
			kept++
		}
	}
	assert.Greater(t, kept, 50)
	assert.Less(t, kept, 150)

	bwd.Input.SetInputGradient(ones(200))
	require.NoError(t, bwd.Compute())
	assert.Equal(t, mask, bwd.Result().Gradient().AsFloat64(), "gradient flows through kept elements only")
}

func TestDropout_SeedDeterminesMask(t *testing.T) {
	run := func(seed uint64, level dispatch.Capability) []float64 {
		par := DefaultParameter()
		par.Seed = seed
		fwd, err := NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par, algorithm.WithCapability(level))
		require.NoError(t, err)
		fwd.Input.SetData(ones(64))
		require.NoError(t, fwd.Compute())
		return fwd.Result().Value().AsFloat64()
	}

	assert.Equal(t, run(1, dispatch.Baseline), run(1, dispatch.Vec512))
	assert.NotEqual(t, run(1, dispatch.Baseline), run(2, dispatch.Baseline))
}

func TestDropout_PredictionStageIsIdentity(t *testing.T) {
	par := DefaultParameter()
	par.PredictionStage = true
	fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
	require.NoError(t, err)

	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())
	assert.Equal(t, []float32{1, 2, 3}, fwd.Result().Value().AsFloat32())
	assert.Nil(t, fwd.Result().Aux(AuxRetainMask))
}

func TestDropout_InvalidRetainRatio(t *testing.T) {
	for _, ratio := range []float64{0, -0.1, 1.5} {
		fwd, err := NewForwardBatch(tensor.Float32, algorithm.DefaultDense, Parameter{RetainRatio: ratio})
		require.NoError(t, err)
		fwd.Input.SetData(tensor.MustNew(tensor.Shape{3}, tensor.Float32))
		assert.ErrorIs(t, fwd.Compute(), algorithm.ErrIncorrectParameter, "ratio %g", ratio)
	}
}
