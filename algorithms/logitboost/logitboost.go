// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package logitboost implements prediction for multi-class LogitBoost
// classifiers.
//
// Each boosting iteration contributes one regression stump per class. The
// label of an observation is the class with the largest additive score
// F_k(x) = Σ_m f_mk(x); the lowest class index wins ties. Labels are stored
// as floating point class indices.
package logitboost

import (
	"github.com/born-ml/algos/algorithms/classifier"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Model is a trained LogitBoost ensemble.
type Model struct {
	NFeatures int
	NClasses  int
	// Stumps holds NClasses stumps per iteration: Stumps[m*NClasses+k] is
	// the stump of class k at iteration m.
	Stumps []classifier.Stump
}

// NumberOfFeatures returns the number of columns the model was trained on.
func (m *Model) NumberOfFeatures() int { return m.NFeatures }

// Iterations returns the number of boosting iterations.
func (m *Model) Iterations() int {
	if m.NClasses == 0 {
		return 0
	}
	return len(m.Stumps) / m.NClasses
}

func (m *Model) check(nClasses int) error {
	if m.NClasses != nClasses {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nClasses",
			"parameter has %d classes, model has %d", nClasses, m.NClasses)
	}
	if len(m.Stumps) == 0 || len(m.Stumps)%m.NClasses != 0 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "model",
			"%d stumps is not a positive multiple of %d classes", len(m.Stumps), m.NClasses)
	}
	return classifier.CheckStumps(m.Stumps, m.NFeatures)
}

// Parameter configures prediction.
type Parameter = classifier.Parameter

// Input holds the observations and a LogitBoost Model.
type Input struct {
	*classifier.Input
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{classifier.NewInput()} }

// Check validates the observations and that the model is a LogitBoost Model
// for par.NClasses classes.
func (in *Input) Check(par Parameter, method algorithm.Method) error {
	if err := in.Input.Check(par, method); err != nil {
		return err
	}
	m, ok := in.Model().(*Model)
	if !ok || m == nil {
		return algorithm.Validation(algorithm.ErrNullModel, "model", "got %T, want *logitboost.Model", in.Model())
	}
	return m.check(par.NClasses)
}

// Result holds the class labels.
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

func adapt[T tensor.Float](f func(pred, x []T, n, p, nClasses int, stumps []cpu.Stump)) kernel {
	return func(pred, x *tensor.Tensor, m *Model) {
		f(tensor.Values[T](pred), tensor.Values[T](x), x.Dim(0), x.Dim(1), m.NClasses, m.Stumps)
	}
}

var kernels = dispatch.NewTable[kernel]("logitboost.prediction")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.LogitBoostPredict[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.LogitBoostPredict[float64]))
}

// Batch labels observations with a LogitBoost Model.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "logitboost.prediction",
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

// NewBatch creates a prediction Batch for nClasses classes.
func NewBatch(dtype tensor.DataType, method algorithm.Method, nClasses int, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.NewBatch(spec, dtype, method, Parameter{NClasses: nClasses}, opts...)
}
