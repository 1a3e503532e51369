// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package adaboost implements prediction for binary AdaBoost classifiers.
//
// A Model is a weighted ensemble of decision stumps answering ±1. The label
// of an observation is the sign of the weighted vote Σ α_t·h_t(x); a zero vote
// is labelled +1.
package adaboost

import (
	"github.com/born-ml/algos/algorithms/classifier"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Model is a trained AdaBoost ensemble.
type Model struct {
	NFeatures int
	Stumps    []classifier.Stump
	Alphas    []float64 // Weight of each stump
}

// NumberOfFeatures returns the number of columns the model was trained on.
func (m *Model) NumberOfFeatures() int { return m.NFeatures }

func (m *Model) check() error {
	if len(m.Stumps) == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "model", "no weak learners")
	}
	if len(m.Alphas) != len(m.Stumps) {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "model",
			"%d weights for %d stumps", len(m.Alphas), len(m.Stumps))
	}
	return classifier.CheckStumps(m.Stumps, m.NFeatures)
}

// Parameter configures prediction. AdaBoost is a two-class method.
type Parameter = classifier.Parameter

// DefaultParameter returns the two-class Parameter.
func DefaultParameter() Parameter { return Parameter{NClasses: 2} }

// Input holds the observations and an AdaBoost Model.
type Input struct {
	*classifier.Input
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{classifier.NewInput()} }

// Check validates the observations and that the model is an AdaBoost Model.
func (in *Input) Check(par Parameter, method algorithm.Method) error {
	if par.NClasses != 2 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nClasses", "adaboost is binary, got %d", par.NClasses)
	}
	if err := in.Input.Check(par, method); err != nil {
		return err
	}
	m, ok := in.Model().(*Model)
	if !ok || m == nil {
		return algorithm.Validation(algorithm.ErrNullModel, "model", "got %T, want *adaboost.Model", in.Model())
	}
	return m.check()
}

// Result holds the ±1 labels.
type Result struct {
	*classifier.Result
}

// NewResult creates an unallocated Result.
func NewResult() *Result { return &Result{classifier.NewResult()} }

// Allocate allocates the prediction.
func (r *Result) Allocate(in *Input, par Parameter, dtype tensor.DataType, method algorithm.Method) error {
	return r.Result.Allocate(in.Input, par, dtype, method)
}

// Check validates the prediction.
func (r *Result) Check(in *Input, par Parameter, method algorithm.Method) error {
	return r.Result.Check(in.Input, par, method)
}

type kernel func(pred, x *tensor.Tensor, m *Model)

func adapt[T tensor.Float](f func(pred, x []T, n, p int, stumps []cpu.Stump, alphas []float64)) kernel {
	return func(pred, x *tensor.Tensor, m *Model) {
		f(tensor.Values[T](pred), tensor.Values[T](x), x.Dim(0), x.Dim(1), m.Stumps, m.Alphas)
	}
}

var kernels = dispatch.NewTable[kernel]("adaboost.prediction")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.AdaBoostPredict[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.AdaBoostPredict[float64]))
}

// Batch labels observations with an AdaBoost Model.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "adaboost.prediction",
	NewInput:  NewInput,
	NewResult: NewResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(kernels, dtype, method, level,
			func(k kernel, in *Input, _ Parameter, res *Result) error {
				k(res.Prediction(), in.Data(), in.Model().(*Model))
				return nil
			})
	},
}

// NewBatch creates a prediction Batch.
func NewBatch(dtype tensor.DataType, method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.NewBatch(spec, dtype, method, DefaultParameter(), opts...)
}
