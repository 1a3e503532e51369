// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package classifier holds the prediction Input and Result shared by the
// boosted classifiers. Each classifier embeds them and adds the checks of
// its own Model type.
package classifier

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/tensor"
)

// Input ids.
const (
	Data argument.ID = iota
	Model
	lastInput
)

// Result ids.
const (
	Prediction argument.ID = iota
	lastResult
)

// ResultTag identifies Result in archives.
const ResultTag uint32 = 0x0401

// Stump is a one-split decision tree, the weak learner of the boosted
// classifiers.
type Stump = cpu.Stump

// Trained is implemented by every classifier model.
type Trained interface {
	// NumberOfFeatures returns the number of columns the model was trained on.
	NumberOfFeatures() int
}

// Parameter is common to every classifier.
type Parameter struct {
	NClasses int // Number of classes, 2 for binary classifiers
}

// Input holds the observations to label and the trained model.
type Input struct {
	args *argument.Map
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{args: argument.New(int(lastInput))} }

// Arguments returns the backing argument map.
func (in *Input) Arguments() *argument.Map { return in.args }

// Data returns the [n, p] observations.
func (in *Input) Data() *tensor.Tensor { return in.args.Tensor(Data) }

// SetData sets the observations.
func (in *Input) SetData(t *tensor.Tensor) { in.args.Set(Data, t) }

// Model returns the trained model, or nil.
func (in *Input) Model() Trained {
	m, _ := argument.Get[Trained](in.args, Model)
	return m
}

// SetModel sets the trained model. A nil model clears the slot.
func (in *Input) SetModel(m Trained) {
	if m == nil {
		in.args.Set(Model, nil)
		return
	}
	in.args.Set(Model, m)
}

// Check validates the observations against the model.
func (in *Input) Check(par Parameter, _ algorithm.Method) error {
	if par.NClasses < 2 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nClasses", "need at least 2, got %d", par.NClasses)
	}
	x := in.Data()
	if err := algorithm.CheckTensorRank(x, "data", 2, 2); err != nil {
		return err
	}
	m := in.Model()
	if m == nil {
		return algorithm.Validation(algorithm.ErrNullModel, "model", "")
	}
	if x.Dim(1) != m.NumberOfFeatures() {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "data",
			"%d columns, model has %d features", x.Dim(1), m.NumberOfFeatures())
	}
	return nil
}

// Result holds the predicted labels.
type Result struct {
	args *argument.Map
}

// NewResult creates an unallocated Result.
func NewResult() *Result { return &Result{args: argument.New(int(lastResult))} }

// Arguments returns the backing argument map.
func (r *Result) Arguments() *argument.Map { return r.args }

// SerializationTag identifies the Result type in archives.
func (r *Result) SerializationTag() uint32 { return ResultTag }

// Prediction returns the [n, 1] labels.
func (r *Result) Prediction() *tensor.Tensor { return r.args.Tensor(Prediction) }

// SetPrediction sets a caller-provided buffer for the labels.
func (r *Result) SetPrediction(t *tensor.Tensor) { r.args.Set(Prediction, t) }

// Allocate allocates an [n, 1] prediction.
func (r *Result) Allocate(in *Input, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	return algorithm.AllocateIfMissing(r.Prediction(), "prediction", tensor.Shape{in.Data().Dim(0), 1}, dtype, r.SetPrediction)
}

// Check validates the prediction shape.
func (r *Result) Check(in *Input, _ Parameter, _ algorithm.Method) error {
	return algorithm.CheckTensor(r.Prediction(), "prediction", tensor.Shape{in.Data().Dim(0), 1})
}

// CheckStumps validates that every stump splits on one of nFeatures columns.
func CheckStumps(stumps []Stump, nFeatures int) error {
	for i, s := range stumps {
		if s.Feature < 0 || s.Feature >= nFeatures {
			return algorithm.Validation(algorithm.ErrIncorrectParameter, "model",
				"stump %d splits on feature %d of %d", i, s.Feature, nFeatures)
		}
	}
	return nil
}
