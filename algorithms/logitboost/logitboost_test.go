// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package logitboost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/adaboost"
	"github.com/born-ml/algos/algorithms/classifier"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func newModel() *Model {
	return &Model{
		NFeatures: 1,
		NClasses:  3,
		Stumps: []classifier.Stump{
			{Feature: 0, Threshold: 0, Left: 1, Right: -1},
			{Feature: 0, Threshold: 0, Left: -1, Right: 1},
			{Feature: 0, Threshold: 10, Left: 0, Right: 5},
		},
	}
}

func TestLogitBoost_Predict(t *testing.T) {
	b, err := NewBatch(tensor.Float64, algorithm.DefaultDense, 3)
	require.NoError(t, err)
	x, _ := tensor.FromSlice([]float64{-1, 1, 20}, tensor.Shape{3, 1})
	b.Input.SetData(x)
	b.Input.SetModel(newModel())

	require.NoError(t, b.Compute())
	assert.Equal(t, []float64{0, 1, 2}, b.Result().Prediction().AsFloat64())
	assert.Equal(t, 1, newModel().Iterations())
}

func TestLogitBoost_TiesGoToLowestClass(t *testing.T) {
	m := &Model{
		NFeatures: 1,
		NClasses:  2,
		Stumps: []classifier.Stump{
			{Feature: 0, Left: 2, Right: 2},
			{Feature: 0, Left: 2, Right: 2},
		},
	}
	b, err := NewBatch(tensor.Float32, algorithm.DefaultDense, 2)
	require.NoError(t, err)
	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{1, 1})
	b.Input.SetData(x)
	b.Input.SetModel(m)

	require.NoError(t, b.Compute())
	assert.Equal(t, []float32{0}, b.Result().Prediction().AsFloat32())
}

func TestLogitBoost_Validation(t *testing.T) {
	tests := []struct {
		name     string
		nClasses int
		model    classifier.Trained
		want     error
	}{
		{"class count mismatch", 4, newModel(), algorithm.ErrIncorrectParameter},
		{"single class", 1, newModel(), algorithm.ErrIncorrectParameter},
		{"ragged ensemble", 3, &Model{NFeatures: 1, NClasses: 3, Stumps: make([]classifier.Stump, 4)}, algorithm.ErrIncorrectParameter},
		{"model of another classifier", 3, &adaboost.Model{NFeatures: 1}, algorithm.ErrNullModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBatch(tensor.Float64, algorithm.DefaultDense, tt.nClasses)
			require.NoError(t, err)
			b.Input.SetData(tensor.MustNew(tensor.Shape{2, 1}, tensor.Float64))
			b.Input.SetModel(tt.model)
			assert.ErrorIs(t, b.Compute(), tt.want)
		})
	}
}
