// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package serialization_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithm"
	"github.com/born-ml/algos/algorithms/layers/logistic"
	"github.com/born-ml/algos/algorithms/qr"
	"github.com/born-ml/algos/serialization"
	"github.com/born-ml/algos/tensor"
)

func TestFacade_FileRoundTrip(t *testing.T) {
	fwd, err := logistic.NewForwardBatch(tensor.Float64, algorithm.DefaultDense, logistic.Parameter{})
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float64{0, 1, -1}, tensor.Shape{3})
	require.NoError(t, err)
	fwd.Input.SetData(x)
	require.NoError(t, fwd.Compute())

	path := filepath.Join(t.TempDir(), "logistic.algr")
	require.NoError(t, serialization.WriteFile(path, fwd.Result()))

	res := logistic.NewForwardResult()
	require.NoError(t, serialization.ReadFile(path, res))
	assert.Equal(t, fwd.Result().Value().AsFloat64(), res.Value().AsFloat64())
	assert.True(t, res.Computed())

	assert.ErrorIs(t, serialization.ReadFile(path, qr.NewResult()), serialization.ErrTagMismatch)
}

func TestFacade_InvalidMagic(t *testing.T) {
	err := serialization.Read(bytes.NewReader(make([]byte, 128)), logistic.NewForwardResult())
	assert.ErrorIs(t, err, serialization.ErrInvalidMagic)
}
