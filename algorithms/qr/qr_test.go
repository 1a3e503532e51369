// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func TestQR_Reconstructs(t *testing.T) {
	a := []float64{
		12, -51, 4,
		6, 167, -68,
		-4, 24, -41,
		1, 2, 3,
	}
	x, _ := tensor.FromSlice(a, tensor.Shape{4, 3})

	b, err := NewBatch(tensor.Float64, algorithm.DefaultDense)
	require.NoError(t, err)
	b.Input.SetData(x)
	require.NoError(t, b.Compute())

	q := b.Result().MatrixQ().AsFloat64()
	r := b.Result().MatrixR().AsFloat64()
	require.Len(t, q, 12)
	require.Len(t, r, 9)

	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += q[i*3+k] * r[k*3+j]
			}
			assert.InDelta(t, a[i*3+j], sum, 1e-9, "a[%d,%d]", i, j)
		}
	}
	for j := 0; j < 3; j++ {
		assert.GreaterOrEqual(t, r[j*3+j], 0.0, "diagonal of R")
		for k := 0; k < j; k++ {
			assert.Zero(t, r[j*3+k], "below diagonal of R")
		}
	}
	for c1 := 0; c1 < 3; c1++ {
		for c2 := 0; c2 < 3; c2++ {
			var dot float64
			for i := 0; i < 4; i++ {
				dot += q[i*3+c1] * q[i*3+c2]
			}
			want := 0.0
			if c1 == c2 {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-9)
		}
	}
}

func TestQR_WideMatrixRejected(t *testing.T) {
	b, err := NewBatch(tensor.Float32, algorithm.DefaultDense)
	require.NoError(t, err)
	b.Input.SetData(tensor.MustNew(tensor.Shape{2, 3}, tensor.Float32))

	err = b.Compute()
	assert.ErrorIs(t, err, algorithm.ErrIncorrectSizeOfDimension)
	assert.Nil(t, b.Result().MatrixQ(), "nothing is allocated when validation fails")
}

func TestQR_UserBuffers(t *testing.T) {
	b, err := NewBatch(tensor.Float32, algorithm.DefaultDense)
	require.NoError(t, err)
	x, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2, 1})
	b.Input.SetData(x)

	q := tensor.MustNew(tensor.Shape{2, 1}, tensor.Float32)
	b.Result().SetMatrixQ(q)
	require.NoError(t, b.Compute())
	assert.Same(t, q, b.Result().MatrixQ())
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, q.AsFloat32(), 1e-6)
	assert.InDelta(t, 5, b.Result().MatrixR().AsFloat32()[0], 1e-6)

	res := NewResult()
	res.SetMatrixR(tensor.MustNew(tensor.Shape{2, 2}, tensor.Float32))
	b.SetResult(res)
	assert.ErrorIs(t, b.Compute(), algorithm.ErrIncorrectSizeOfDimension)
}
